package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopperssay/backend/api/responses"
	"github.com/shopperssay/backend/api/validators"
	"github.com/shopperssay/backend/pkg/logger"
)

// fallbackDescription keeps the form usable when the model is down or
// unconfigured.
const fallbackDescription = "Well-kept item in good condition. Priced to sell; open to reasonable offers. Pickup or shipping available on request."

type descriptionGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type assistDescriptionPayload struct {
	Title    string `json:"title" validate:"required,min=1,max=200"`
	Category string `json:"category,omitempty" validate:"max=50"`
}

type assistDescriptionResponse struct {
	Description string `json:"description"`
	Generated   bool   `json:"generated"`
}

// AssistDescription drafts listing copy from a title, falling back to a
// canned blurb when the upstream model is unavailable.
func AssistDescription(gen descriptionGenerator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload assistDescriptionPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if gen == nil {
			responses.WriteSuccess(w, assistDescriptionResponse{Description: fallbackDescription})
			return
		}

		prompt := buildDescriptionPrompt(payload.Title, payload.Category)
		text, err := gen.GenerateText(ctx, prompt)
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "description generation failed, serving fallback", err)
			}
			responses.WriteSuccess(w, assistDescriptionResponse{Description: fallbackDescription})
			return
		}

		responses.WriteSuccess(w, assistDescriptionResponse{
			Description: strings.TrimSpace(text),
			Generated:   true,
		})
	}
}

func buildDescriptionPrompt(title, category string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a short, honest second-hand marketplace listing description for %q.", title)
	if strings.TrimSpace(category) != "" {
		fmt.Fprintf(&b, " The item is listed under the %q category.", category)
	}
	b.WriteString(" Two to three sentences, no emojis, no headings.")
	return b.String()
}
