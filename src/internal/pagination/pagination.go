package pagination

import (
	"math"
	"strconv"

	"github.com/rishipandey14/HRMS-Backend/src/internal/config"
)

type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Skip  int `json:"-"`
}

// Parse reads page/limit query values. Page defaults to 1; a limit outside 1..MaxLimit
// falls back to DefaultLimit instead of being capped.
func Parse(page, limit string, cfg config.PaginationConfig) Params {
	p, err := strconv.Atoi(page)
	if err != nil || p < 1 {
		p = 1
	}

	l, err := strconv.Atoi(limit)
	if err != nil || l < 1 || l > cfg.MaxLimit {
		l = cfg.DefaultLimit
	}

	// keeps (p-1)*l inside int
	if maxPage := math.MaxInt / l; p > maxPage {
		p = maxPage
	}

	return Params{Page: p, Limit: l, Skip: (p - 1) * l}
}

func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
