package models

// DerivedStat is the computed per-menu projection used by every
// aggregation. Recomputed on each query, never stored.
type DerivedStat struct {
	MenuID         string `json:"menuId"`
	Date           string `json:"date"` // ISO YYYY-MM-DD
	TotalVotes     int    `json:"totalVotes"`
	Likes          int    `json:"likes"`
	Dislikes       int    `json:"dislikes"`
	LikePercentage int    `json:"likePercentage"` // integer 0-100, 0 when no votes
}

// DerivedStatOf projects a menu onto its stat view. The percentage is a
// rounded integer and defined as 0 (not NaN) for menus nobody voted on.
func DerivedStatOf(m Menu, isoDate string) DerivedStat {
	total := m.Likes + m.Dislikes
	pct := 0
	if total > 0 {
		pct = int(float64(m.Likes)/float64(total)*100 + 0.5)
	}
	return DerivedStat{
		MenuID:         m.ID,
		Date:           isoDate,
		TotalVotes:     total,
		Likes:          m.Likes,
		Dislikes:       m.Dislikes,
		LikePercentage: pct,
	}
}
