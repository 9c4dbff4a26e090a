package store

import (
	"fmt"
	"time"

	"wedding-backend/models"
)

// NewDemoStore returns a MemoryStore seeded with the fixed showcase dataset
// served when the live database is unavailable.
func NewDemoStore() *MemoryStore {
	m := NewMemoryStore()
	m.invitations = demoInvitations()
	m.wellWishes = demoWellWishes()
	m.visits = demoVisits()
	return m
}

var demoBase = time.Date(2025, time.September, 1, 18, 0, 0, 0, time.UTC)

func demoAt(day, hour int) time.Time {
	return demoBase.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
}

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func demoInvitations() []models.Invitation {
	rows := []struct {
		email, person, gender, invitedBy, message string
		names                                     []string
		response                                  *string
		guests                                    int
		limit                                     *int
		day                                       int
	}{
		{"lucia.fernandez@example.com", "Lucía", "a", "maria", "¡No nos lo perdemos!", []string{"Lucía Fernández", "Pablo Ruiz"}, strp("yes"), 2, intp(3), 0},
		{"james.carter@example.com", "James", "o", "daniel", "", []string{"James Carter"}, strp("yes"), 1, intp(2), 1},
		{"sofia.martinez@example.com", "Sofía", "a", "maria", "Vegetariana, por favor", []string{"Sofía Martínez", "Andrés Gil", "Emma Gil"}, strp("yes"), 3, intp(4), 2},
		{"oliver.brown@example.com", "Oliver", "o", "daniel", "So sorry we can't make it", []string{"Oliver Brown"}, strp("no"), 1, intp(2), 3},
		{"carmen.lopez@example.com", "Carmen", "a", "maria", "", []string{"Carmen López", "Jorge López"}, nil, 2, intp(2), 4},
		{"noah.wilson@example.com", "Noah", "o", "daniel", "Gluten free", []string{"Noah Wilson", "Ava Wilson"}, strp("yes"), 2, intp(2), 5},
		{"isabel.navarro@example.com", "Isabel", "a", "abuela", "", []string{"Isabel Navarro"}, strp("no"), 1, intp(1), 6},
		{"mateo.sanchez@example.com", "Mateo", "o", "abuela", "", []string{"Mateo Sánchez", "Valeria Torres"}, strp("yes"), 2, intp(5), 7},
		{"grace.taylor@example.com", "Grace", "a", "daniel", "", []string{"Grace Taylor"}, nil, 1, nil, 8},
		{"diego.romero@example.com", "Diego", "o", "maria", "Alergia a los frutos secos", []string{"Diego Romero", "Elena Romero"}, strp("yes"), 2, intp(2), 9},
		{"amelia.clark@example.com", "", "", "", "", []string{"Amelia Clark", "Henry Clark"}, strp("no"), 2, nil, 10},
		{"ana.morales@example.com", "Ana", "a", "abuela", "", []string{"Ana Morales"}, strp("yes"), 1, intp(3), 11},
	}

	out := make([]models.Invitation, 0, len(rows))
	for i, r := range rows {
		created := demoAt(r.day, i%5)
		out = append(out, models.Invitation{
			ID:                     fmt.Sprintf("demo-rsvp-%02d", i+1),
			Email:                  r.email,
			Names:                  r.names,
			Response:               r.response,
			Message:                r.message,
			GuestCount:             r.guests,
			InvitedBy:              r.invitedBy,
			InvitationValid:        r.invitedBy != "",
			InvitedPerson:          r.person,
			PersonalizedGender:     r.gender,
			PossibleInvitesInvited: r.limit,
			Timestamp:              created,
			CreatedAt:              created,
		})
	}
	return out
}

func demoWellWishes() []models.WellWish {
	rows := []struct{ name, email, message string }{
		{"Lucía Fernández", "lucia.fernandez@example.com", "¡Que vuestro amor crezca cada día!"},
		{"James Carter", "", "Wishing you a lifetime of laughter."},
		{"Sofía Martínez", "sofia.martinez@example.com", "Gracias por hacernos parte de este día."},
		{"Oliver Brown", "", "Sorry to miss it, cheers to you both!"},
		{"Abuela Rosa", "", "Os quiero muchísimo."},
		{"Noah Wilson", "noah.wilson@example.com", "Can't wait to dance with you."},
	}
	out := make([]models.WellWish, 0, len(rows))
	for i, r := range rows {
		at := demoAt(i*2, 3)
		out = append(out, models.WellWish{
			ID:        fmt.Sprintf("demo-wish-%02d", i+1),
			Name:      r.name,
			Email:     r.email,
			Message:   r.message,
			Timestamp: at,
			CreatedAt: at,
		})
	}
	return out
}

func demoVisits() []models.Visit {
	inviters := []string{"maria", "daniel", "maria", "abuela", "maria", "daniel"}
	out := make([]models.Visit, 0, 24)
	for i := 0; i < 24; i++ {
		inviter := inviters[i%len(inviters)]
		out = append(out, models.Visit{
			ID:         fmt.Sprintf("demo-visit-%02d", i+1),
			InvitedBy:  inviter,
			GuestLimit: 1 + i%4,
			SessionID:  fmt.Sprintf("demo-session-%02d", i%15),
			IPHash:     fmt.Sprintf("demo-ip-%02d", i%12),
			UserAgent:  "Mozilla/5.0",
			VisitedAt:  demoAt(i/2, i%6),
		})
	}
	return out
}
