package gateway

import (
	"github.com/google/uuid"

	"menukiosk/pkg/models"
)

// SampleMenus is the built-in record set served when both the backend
// and the local cache come up empty. The kiosk never renders
// empty-by-failure; at worst it shows this sample day with zero votes.
func SampleMenus() []models.Menu {
	return []models.Menu{
		{
			ID:       "sample-" + uuid.NewString(),
			Fecha:    "17/8/2025",
			MainDish: "Pollo a la plancha",
			Side:     "Arroz blanco y ensalada",
			Beverage: "Jugo natural",
			Likes:    0,
			Dislikes: 0,
		},
	}
}
