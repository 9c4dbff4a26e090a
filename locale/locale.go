// Package locale picks between the two supported languages and holds the
// handful of user-facing strings the API returns.
package locale

import (
	"golang.org/x/text/language"
)

type Lang string

const (
	ES Lang = "es"
	EN Lang = "en"
)

var matcher = language.NewMatcher([]language.Tag{language.Spanish, language.English})

// Resolve prefers an explicit lang parameter, then Accept-Language, then es.
func Resolve(param, acceptLanguage string) Lang {
	if l, ok := parse(param); ok {
		return l
	}
	if acceptLanguage == "" {
		return ES
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return ES
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No || idx != 1 {
		return ES
	}
	return EN
}

func parse(raw string) (Lang, bool) {
	if raw == "" {
		return "", false
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	switch base.String() {
	case "es":
		return ES, true
	case "en":
		return EN, true
	}
	return "", false
}

type Key string

const (
	WellWishUnavailable  Key = "wellwish.unavailable"
	VisitUnavailable     Key = "visit.unavailable"
	DashboardUnavailable Key = "dashboard.unavailable"
	InvalidPassword      Key = "auth.invalid_password"
	Unauthorized         Key = "auth.unauthorized"
	RSVPSaved            Key = "rsvp.saved"
	WellWishSaved        Key = "wellwish.saved"
	NotFound             Key = "common.not_found"
	Internal             Key = "common.internal"
)

var catalog = map[Lang]map[Key]string{
	ES: {
		WellWishUnavailable:  "No pudimos guardar tus buenos deseos en este momento. Inténtalo de nuevo más tarde.",
		VisitUnavailable:     "No se pudo registrar la visita.",
		DashboardUnavailable: "El panel no está disponible en este momento.",
		InvalidPassword:      "Contraseña incorrecta.",
		Unauthorized:         "No autorizado.",
		RSVPSaved:            "¡Gracias por confirmar tu asistencia!",
		WellWishSaved:        "¡Gracias por tus buenos deseos!",
		NotFound:             "No encontrado.",
		Internal:             "Error interno del servidor.",
	},
	EN: {
		WellWishUnavailable:  "We couldn't save your well-wishes right now. Please try again later.",
		VisitUnavailable:     "The visit could not be recorded.",
		DashboardUnavailable: "The dashboard is unavailable right now.",
		InvalidPassword:      "Invalid password.",
		Unauthorized:         "Unauthorized.",
		RSVPSaved:            "Thank you for your RSVP!",
		WellWishSaved:        "Thank you for your well-wishes!",
		NotFound:             "Not found.",
		Internal:             "Internal server error.",
	},
}

// T returns the message for key, falling back to Spanish.
func T(l Lang, key Key) string {
	if msg, ok := catalog[l][key]; ok {
		return msg
	}
	return catalog[ES][key]
}
