// Package invite decodes the landing-page query string: the invited-by code
// (<inviter>-<guests>) and the optional personalised greeting.
package invite

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"wedding-backend/locale"
)

const (
	MinGuests = 1
	MaxGuests = 7
)

var codePattern = regexp.MustCompile(`^(\p{L}[\p{L}\p{N}_.]*)-(\d{1,2})$`)

// Code is the invited-by token embedded in invitation links.
type Code struct {
	InvitedBy  string `json:"invitedBy"`
	GuestLimit int    `json:"guestLimit"`
	Valid      bool   `json:"valid"`
}

// ParseCode reads "<inviter>-<n>". n outside 1..7 keeps the inviter but
// marks the code invalid.
func ParseCode(raw string) (Code, bool) {
	m := codePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Code{}, false
	}
	n, _ := strconv.Atoi(m[2])
	code := Code{InvitedBy: strings.ToLower(m[1]), GuestLimit: n}
	code.Valid = n >= MinGuests && n <= MaxGuests
	if !code.Valid {
		code.GuestLimit = 0
	}
	return code, true
}

// Landing is everything the landing page personalises.
type Landing struct {
	Code
	InvitedPerson      string      `json:"invitedPerson,omitempty"`
	PersonalizedGender string      `json:"personalizedGender,omitempty"`
	Greeting           string      `json:"greeting"`
	Title              string      `json:"title"`
	Lang               locale.Lang `json:"lang"`
}

// Parse looks for the code first among parameter keys (?maria-3) and then
// among values (?from=maria-3). Keys are scanned in sorted order.
func Parse(q url.Values, lang locale.Lang) Landing {
	var l Landing
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	found := false
	for _, k := range keys {
		if code, ok := ParseCode(k); ok {
			l.Code, found = code, true
			break
		}
	}
	if !found {
		for _, k := range keys {
			for _, v := range q[k] {
				if code, ok := ParseCode(v); ok {
					l.Code, found = code, true
					break
				}
			}
			if found {
				break
			}
		}
	}

	l.InvitedPerson = cleanName(q.Get("invite"))
	switch g := strings.ToLower(strings.TrimSpace(q.Get("g"))); g {
	case "a", "o":
		l.PersonalizedGender = g
	}
	l.Lang = lang
	l.Greeting, l.Title = Greeting(l.InvitedPerson, l.PersonalizedGender, lang)
	return l
}

func cleanName(raw string) string {
	raw = strings.NewReplacer("_", " ", "+", " ").Replace(raw)
	return strings.Join(strings.Fields(raw), " ")
}

// Greeting returns the salutation and page title for a guest.
func Greeting(name, gender string, lang locale.Lang) (string, string) {
	if lang == locale.EN {
		if name == "" {
			return "Dear guests", "We're getting married!"
		}
		return "Dear " + name, name + ", you're invited to our wedding"
	}

	if name == "" {
		return "Queridos invitados", "¡Nos casamos!"
	}
	switch gender {
	case "a":
		return "Querida " + name, name + ", estás invitada a nuestra boda"
	case "o":
		return "Querido " + name, name + ", estás invitado a nuestra boda"
	default:
		return "Hola " + name, name + ", te invitamos a nuestra boda"
	}
}
