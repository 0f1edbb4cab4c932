package gatekeeper

import (
	"time"

	"github.com/rcliao/gatekeeper/internal/model"
	"github.com/rcliao/gatekeeper/internal/normalize"
)

type seedPhrase struct {
	text     string
	category model.Category
	response string
}

// seedPhrases bootstrap a Brain when no stored one exists.
var seedPhrases = []seedPhrase{
	{"hello", model.Simple, "Hello there!"},
	{"hi", model.Simple, "Hi! How can I help you?"},
	{"hey", model.Simple, "Hey! What's up?"},
	{"good morning", model.Simple, "Good morning! Hope your day is off to a great start."},
	{"good night", model.Simple, "Good night! Sleep well."},
	{"how are you", model.Simple, "I'm doing well, thanks for asking!"},
	{"thanks", model.Simple, "You're welcome!"},
	{"thank you", model.Simple, "You're welcome!"},
	{"bye", model.Simple, "Goodbye! Come back anytime."},
	{"goodbye", model.Simple, "Goodbye! Come back anytime."},
	{"ok", model.Simple, "Great!"},

	{"hola", model.Simple, "¡Hola! ¿En qué puedo ayudarte?"},
	{"buenos dias", model.Simple, "¡Buenos días!"},
	{"buenas noches", model.Simple, "¡Buenas noches! Que descanses."},
	{"como estas", model.Simple, "¡Muy bien, gracias por preguntar!"},
	{"gracias", model.Simple, "¡De nada!"},
	{"muchas gracias", model.Simple, "¡Con mucho gusto!"},
	{"adios", model.Simple, "¡Adiós! Vuelve pronto."},
	{"hasta luego", model.Simple, "¡Hasta luego!"},

	{"explain quantum computing", model.Complex, ""},
	{"write a poem about the ocean", model.Complex, ""},
	{"what is the meaning of life", model.Complex, ""},
	{"summarize the history of the roman empire", model.Complex, ""},
	{"explica la teoria de la relatividad", model.Complex, ""},
	{"escribe un cuento sobre un dragon", model.Complex, ""},
	{"cual es la capital de australia y por que", model.Complex, ""},
}

// SeedBrain builds the bootstrap Brain from the fixed seed set.
func SeedBrain(at time.Time) *model.Brain {
	b := model.NewBrain()
	for _, p := range seedPhrases {
		apply(b, normalize.Normalize(p.text), p.category, p.response, model.SourceSeed, at.UTC(), false)
	}
	return b
}
