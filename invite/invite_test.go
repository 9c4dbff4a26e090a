package invite

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-backend/locale"
)

func TestParseCode(t *testing.T) {
	cases := []struct {
		raw  string
		ok   bool
		want Code
	}{
		{"maria-3", true, Code{InvitedBy: "maria", GuestLimit: 3, Valid: true}},
		{"Daniel-1", true, Code{InvitedBy: "daniel", GuestLimit: 1, Valid: true}},
		{"abuela-7", true, Code{InvitedBy: "abuela", GuestLimit: 7, Valid: true}},
		{"maria-8", true, Code{InvitedBy: "maria", Valid: false}},
		{"maria-0", true, Code{InvitedBy: "maria", Valid: false}},
		{"maria", false, Code{}},
		{"-3", false, Code{}},
		{"maria-x", false, Code{}},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := ParseCode(tc.raw)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_KeyForm(t *testing.T) {
	q, err := url.ParseQuery("maria-3&invite=Ana_Lopez&g=a")
	require.NoError(t, err)

	l := Parse(q, locale.ES)
	assert.Equal(t, "maria", l.InvitedBy)
	assert.Equal(t, 3, l.GuestLimit)
	assert.True(t, l.Valid)
	assert.Equal(t, "Ana Lopez", l.InvitedPerson)
	assert.Equal(t, "a", l.PersonalizedGender)
	assert.Equal(t, "Querida Ana Lopez", l.Greeting)
	assert.Equal(t, "Ana Lopez, estás invitada a nuestra boda", l.Title)
}

func TestParse_ValueForm(t *testing.T) {
	q := url.Values{"from": {"daniel-2"}, "invite": {"Tom"}, "g": {"o"}}

	l := Parse(q, locale.EN)
	assert.Equal(t, "daniel", l.InvitedBy)
	assert.Equal(t, 2, l.GuestLimit)
	assert.Equal(t, "Dear Tom", l.Greeting)
	assert.Equal(t, locale.EN, l.Lang)
}

func TestParse_NoCode(t *testing.T) {
	l := Parse(url.Values{"g": {"x"}}, locale.ES)
	assert.False(t, l.Valid)
	assert.Empty(t, l.InvitedBy)
	assert.Empty(t, l.PersonalizedGender)
	assert.Equal(t, "Queridos invitados", l.Greeting)
}

func TestGreeting_SpanishWithoutGender(t *testing.T) {
	greeting, title := Greeting("Sam", "", locale.ES)
	assert.Equal(t, "Hola Sam", greeting)
	assert.Equal(t, "Sam, te invitamos a nuestra boda", title)
}
