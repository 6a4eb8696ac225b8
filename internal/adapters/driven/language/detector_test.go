package language

import (
	"testing"

	"github.com/pemistahl/lingua-go"
	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	d := New(lingua.English, lingua.German, lingua.French)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"english", "Please fill in your full name and the date of birth as shown on your passport.", "en"},
		{"german", "Bitte tragen Sie Ihren vollständigen Namen und das Geburtsdatum wie im Reisepass ein.", "de"},
		{"french", "Veuillez indiquer votre nom complet et votre date de naissance comme sur votre passeport.", "fr"},
		{"too short", "Name:", ""},
		{"blank", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.text))
		})
	}
}

func TestNew_DefaultsWhenUnderspecified(t *testing.T) {
	d := New(lingua.English)
	assert.Equal(t, DefaultLanguages, d.languages)
}
