package leads

import (
	"context"
	"strings"
	"testing"

	"prospecta/models"

	"github.com/stretchr/testify/assert"
)

func TestComposeTemplateFallbackWhatsApp(t *testing.T) {
	c := NewComposer(nil)

	lead := models.Lead{
		Name:         "João Santos",
		Title:        "T3 na Avenida Central",
		Location:     "Braga",
		PriceDisplay: "230 000 €",
	}
	msg := c.Compose(context.Background(), lead, models.JOB_TRIGGER_NEW_LEAD, models.CHANNEL_WHATSAPP)

	assert.Contains(t, msg.Content, "João Santos")
	assert.Contains(t, msg.Content, "Braga")
	assert.Contains(t, msg.Content, "230 000 €")
	assert.Empty(t, msg.Subject)
}

func TestComposeTemplateFallbackEmailHasSubject(t *testing.T) {
	c := NewComposer(nil)

	msg := c.Compose(context.Background(), models.Lead{Name: "Ana"}, models.JOB_TRIGGER_FOLLOWUP_3D, models.CHANNEL_EMAIL)

	assert.NotEmpty(t, msg.Subject)
	assert.Contains(t, msg.Content, "Ana")
}

func TestComposeTemplateHandlesEmptyLead(t *testing.T) {
	c := NewComposer(nil)

	for _, trigger := range []string{
		models.JOB_TRIGGER_NEW_LEAD,
		models.JOB_TRIGGER_FOLLOWUP_3D,
		models.JOB_TRIGGER_FOLLOWUP_7D,
		models.JOB_TRIGGER_MANUAL,
	} {
		msg := c.Compose(context.Background(), models.Lead{}, trigger, models.CHANNEL_WHATSAPP)
		assert.NotEmpty(t, msg.Content, "trigger %s", trigger)
		assert.False(t, strings.Contains(msg.Content, "%s"), "template mal interpolado")
	}
}
