package models

// Menu is one calendar day's menu plus its cumulative vote counters,
// exactly as the backend serves it. JSON field names follow the backend's
// contract (Spanish keys, dates as unpadded D/M/YYYY text).
//
// Invariant: the backend keeps at most one Menu per calendar date, so
// Fecha doubles as a natural key everywhere in this codebase.
type Menu struct {
	ID       string `json:"id"`
	Fecha    string `json:"fecha"` // D/M/YYYY, no zero padding
	MainDish string `json:"menu_ppal"`
	Side     string `json:"acompanamiento"`
	Beverage string `json:"bebida"`
	Likes    int    `json:"megusto"`
	Dislikes int    `json:"nomegusto"`
}

// VoteTotals is the per-day counter view the voting screen renders.
type VoteTotals struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
	Total    int `json:"total"`
}

func (m Menu) Totals() VoteTotals {
	return VoteTotals{
		Likes:    m.Likes,
		Dislikes: m.Dislikes,
		Total:    m.Likes + m.Dislikes,
	}
}

type CreateMenuRequest struct {
	Fecha    string `json:"fecha"` // D/M/YYYY
	MainDish string `json:"menu_ppal"`
	Side     string `json:"acompanamiento"`
	Beverage string `json:"bebida"`
}

// UpdateMenuRequest is a partial update; nil fields are left untouched.
type UpdateMenuRequest struct {
	MainDish *string `json:"menu_ppal,omitempty"`
	Side     *string `json:"acompanamiento,omitempty"`
	Beverage *string `json:"bebida,omitempty"`
}

type VoteRequest struct {
	Fecha string `json:"fecha"` // D/M/YYYY
	Like  bool   `json:"like"`
}

type CommentRequest struct {
	Fecha    string `json:"fecha"` // D/M/YYYY
	MainDish string `json:"menu_ppal"`
	Body     string `json:"comentario"`
}

// NotifyResult is the backend's acknowledgement for notification dispatch.
type NotifyResult struct {
	OK     bool   `json:"ok"`
	Sent   bool   `json:"enviado"`
	Fecha  string `json:"fecha"`
	Detail string `json:"detalle"`
}
