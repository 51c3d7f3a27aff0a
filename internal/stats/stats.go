// Package stats derives every satisfaction rollup the kiosk screens
// show from the raw menu history. Everything here is pure and
// recomputed per query; at one record per day the history stays small
// enough that incremental aggregation would buy nothing.
package stats

import (
	"math"
	"sort"
	"time"

	"menukiosk/pkg/dates"
	"menukiosk/pkg/models"
	"menukiosk/pkg/texts"
)

// MinRankingVotes keeps single-serving outliers out of the dish
// rankings; the full per-dish table still lists them.
const MinRankingVotes = 5

type Totals struct {
	Records               int `json:"records"`
	TotalVotes            int `json:"totalVotes"`
	TotalLikes            int `json:"totalLikes"`
	TotalDislikes         int `json:"totalDislikes"`
	OverallSatisfaction   int `json:"overallSatisfaction"`
	AverageVotesPerDay    int `json:"averageVotesPerDay"`
	AverageLikePercentage int `json:"averageLikePercentage"`
}

// RankedMenu is a best/worst single-menu selection.
type RankedMenu struct {
	models.DerivedStat
	MainDish string `json:"mainDish"`
}

type WeekdayAggregate struct {
	Weekday        int `json:"weekday"` // 0=Sunday .. 6=Saturday
	Days           int `json:"days"`
	TotalVotes     int `json:"totalVotes"`
	Likes          int `json:"likes"`
	Dislikes       int `json:"dislikes"`
	Satisfaction   int `json:"satisfaction"`
	AvgVotesPerDay int `json:"avgVotesPerDay"`
}

type DishAggregate struct {
	Name                  string `json:"name"` // first-seen original casing
	Appearances           int    `json:"appearances"`
	TotalVotes            int    `json:"totalVotes"`
	Likes                 int    `json:"likes"`
	Dislikes              int    `json:"dislikes"`
	Satisfaction          int    `json:"satisfaction"`
	AvgVotesPerAppearance int    `json:"avgVotesPerAppearance"`
	Consistency           int    `json:"consistency"` // higher = steadier ratings

	ratings []int // per-appearance like percentages
}

type MonthAggregate struct {
	Month        int `json:"month"` // 0=January .. 11=December
	Days         int `json:"days"`
	TotalVotes   int `json:"totalVotes"`
	Likes        int `json:"likes"`
	Dislikes     int `json:"dislikes"`
	Satisfaction int `json:"satisfaction"`
}

// ItemAggregate covers sides and beverages, which only carry a mean of
// the daily like percentages rather than a full rollup.
type ItemAggregate struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	TotalVotes int    `json:"totalVotes"`
	AvgRating  int    `json:"avgRating"`
}

type Report struct {
	Totals Totals `json:"totals"`

	BestMenu  *RankedMenu `json:"bestMenu"`
	WorstMenu *RankedMenu `json:"worstMenu"`

	Weekdays     []WeekdayAggregate `json:"weekdays"`
	BestWeekday  *WeekdayAggregate  `json:"bestWeekday"`
	WorstWeekday *WeekdayAggregate  `json:"worstWeekday"`

	Dishes       []DishAggregate `json:"dishes"`       // full table
	RankedDishes []DishAggregate `json:"rankedDishes"` // >= MinRankingVotes
	BestDish     *DishAggregate  `json:"bestDish"`
	WorstDish    *DishAggregate  `json:"worstDish"`

	Months    []MonthAggregate `json:"months"`
	Sides     []ItemAggregate  `json:"sides"`
	Beverages []ItemAggregate  `json:"beverages"`
}

type entry struct {
	menu models.Menu
	stat models.DerivedStat
	date time.Time
}

// Aggregate filters the history by period and computes every rollup.
// An empty window yields zero totals, empty slices and nil selections.
func Aggregate(menus []models.Menu, p Period, now time.Time) Report {
	entries := filter(menus, p, now)

	r := Report{
		Weekdays:     []WeekdayAggregate{},
		Dishes:       []DishAggregate{},
		RankedDishes: []DishAggregate{},
		Months:       []MonthAggregate{},
		Sides:        []ItemAggregate{},
		Beverages:    []ItemAggregate{},
	}
	if len(entries) == 0 {
		return r
	}

	r.Totals = totalsOf(entries)
	r.BestMenu, r.WorstMenu = bestWorstMenus(entries)
	r.Weekdays, r.BestWeekday, r.WorstWeekday = weekdayRollup(entries)
	r.Dishes, r.RankedDishes, r.BestDish, r.WorstDish = dishRollup(entries)
	r.Months = monthRollup(entries)
	r.Sides = itemRollup(entries, func(m models.Menu) string { return m.Side })
	r.Beverages = itemRollup(entries, func(m models.Menu) string { return m.Beverage })
	return r
}

// AvailableYears lists every year present in the history, newest first.
func AvailableYears(menus []models.Menu) []int {
	seen := map[int]bool{}
	for _, m := range menus {
		t, err := dates.APIToTime(m.Fecha)
		if err != nil {
			continue
		}
		seen[t.Year()] = true
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// filter maps menus to derived stats, drops unparseable dates, applies
// the period and sorts date-ascending. The sort makes best/worst tie
// breaking deterministic: first occurrence in date order wins.
func filter(menus []models.Menu, p Period, now time.Time) []entry {
	entries := make([]entry, 0, len(menus))
	for _, m := range menus {
		t, err := dates.APIToTime(m.Fecha)
		if err != nil {
			continue
		}
		if !p.Contains(t, now) {
			continue
		}
		iso, _ := dates.APIToISO(m.Fecha)
		entries = append(entries, entry{
			menu: m,
			stat: models.DerivedStatOf(m, iso),
			date: t,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].date.Before(entries[j].date) })
	return entries
}

func totalsOf(entries []entry) Totals {
	var t Totals
	pctSum := 0
	for _, e := range entries {
		t.TotalVotes += e.stat.TotalVotes
		t.TotalLikes += e.stat.Likes
		t.TotalDislikes += e.stat.Dislikes
		pctSum += e.stat.LikePercentage
	}
	t.Records = len(entries)
	t.OverallSatisfaction = pct(t.TotalLikes, t.TotalVotes)
	t.AverageVotesPerDay = round(float64(t.TotalVotes) / float64(len(entries)))
	t.AverageLikePercentage = round(float64(pctSum) / float64(len(entries)))
	return t
}

// bestWorstMenus keeps the original selection rules: best must beat 0%,
// worst must have votes and sit below 100%, so a window of all-zero (or
// all-perfect) days reports no selection rather than an arbitrary one.
func bestWorstMenus(entries []entry) (best, worst *RankedMenu) {
	bestPct, worstPct := 0, 100
	for i := range entries {
		e := entries[i]
		if e.stat.LikePercentage > bestPct {
			bestPct = e.stat.LikePercentage
			best = &RankedMenu{DerivedStat: e.stat, MainDish: e.menu.MainDish}
		}
		if e.stat.TotalVotes > 0 && e.stat.LikePercentage < worstPct {
			worstPct = e.stat.LikePercentage
			worst = &RankedMenu{DerivedStat: e.stat, MainDish: e.menu.MainDish}
		}
	}
	return best, worst
}

func weekdayRollup(entries []entry) (all []WeekdayAggregate, best, worst *WeekdayAggregate) {
	buckets := map[int]*WeekdayAggregate{}
	for _, e := range entries {
		wd := int(e.date.Weekday())
		b := buckets[wd]
		if b == nil {
			b = &WeekdayAggregate{Weekday: wd}
			buckets[wd] = b
		}
		b.Days++
		b.TotalVotes += e.stat.TotalVotes
		b.Likes += e.stat.Likes
		b.Dislikes += e.stat.Dislikes
	}

	all = make([]WeekdayAggregate, 0, len(buckets))
	for _, b := range buckets {
		b.Satisfaction = pct(b.Likes, b.TotalVotes)
		b.AvgVotesPerDay = round(float64(b.TotalVotes) / float64(b.Days))
		all = append(all, *b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Weekday < all[j].Weekday })

	bestPct, worstPct := 0, 100
	for i := range all {
		b := all[i]
		if b.TotalVotes == 0 {
			continue
		}
		if b.Satisfaction > bestPct {
			bestPct = b.Satisfaction
			best = &all[i]
		}
		if b.Satisfaction < worstPct {
			worstPct = b.Satisfaction
			worst = &all[i]
		}
	}
	return all, best, worst
}

func dishRollup(entries []entry) (all, ranked []DishAggregate, best, worst *DishAggregate) {
	buckets := map[string]*DishAggregate{}
	var order []string
	for _, e := range entries {
		key := texts.NormalizeDish(e.menu.MainDish)
		b := buckets[key]
		if b == nil {
			b = &DishAggregate{Name: e.menu.MainDish}
			buckets[key] = b
			order = append(order, key)
		}
		b.Appearances++
		b.TotalVotes += e.stat.TotalVotes
		b.Likes += e.stat.Likes
		b.Dislikes += e.stat.Dislikes
		b.ratings = append(b.ratings, e.stat.LikePercentage)
	}

	all = make([]DishAggregate, 0, len(buckets))
	for _, key := range order {
		b := buckets[key]
		b.Satisfaction = pct(b.Likes, b.TotalVotes)
		b.AvgVotesPerAppearance = round(float64(b.TotalVotes) / float64(b.Appearances))
		b.Consistency = consistency(b.ratings)
		all = append(all, *b)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Satisfaction > all[j].Satisfaction })

	for _, d := range all {
		if d.TotalVotes >= MinRankingVotes {
			ranked = append(ranked, d)
		}
	}
	if len(ranked) > 0 {
		best = &ranked[0]
		worst = &ranked[len(ranked)-1]
	}
	return all, ranked, best, worst
}

// consistency inverts the standard deviation of a dish's per-serving
// like percentages so that a steadier dish scores higher. Percentages
// live in [0,100], so the deviation caps at 50 and the score stays in
// [50,100] for any non-empty history; an empty history scores 0.
func consistency(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	mean := 0.0
	for _, r := range ratings {
		mean += float64(r)
	}
	mean /= float64(len(ratings))

	variance := 0.0
	for _, r := range ratings {
		d := float64(r) - mean
		variance += d * d
	}
	variance /= float64(len(ratings))

	return round(100 - math.Sqrt(variance))
}

func monthRollup(entries []entry) []MonthAggregate {
	buckets := map[int]*MonthAggregate{}
	for _, e := range entries {
		mo := int(e.date.Month()) - 1
		b := buckets[mo]
		if b == nil {
			b = &MonthAggregate{Month: mo}
			buckets[mo] = b
		}
		b.Days++
		b.TotalVotes += e.stat.TotalVotes
		b.Likes += e.stat.Likes
		b.Dislikes += e.stat.Dislikes
	}

	all := make([]MonthAggregate, 0, len(buckets))
	for _, b := range buckets {
		b.Satisfaction = pct(b.Likes, b.TotalVotes)
		all = append(all, *b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Month < all[j].Month })
	return all
}

func itemRollup(entries []entry, pick func(models.Menu) string) []ItemAggregate {
	type acc struct {
		ItemAggregate
		ratingSum int
	}
	buckets := map[string]*acc{}
	var order []string
	for _, e := range entries {
		name := pick(e.menu)
		b := buckets[name]
		if b == nil {
			b = &acc{ItemAggregate: ItemAggregate{Name: name}}
			buckets[name] = b
			order = append(order, name)
		}
		b.Count++
		b.TotalVotes += e.stat.TotalVotes
		b.ratingSum += e.stat.LikePercentage
	}

	all := make([]ItemAggregate, 0, len(buckets))
	for _, name := range order {
		b := buckets[name]
		b.AvgRating = round(float64(b.ratingSum) / float64(b.Count))
		all = append(all, b.ItemAggregate)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].AvgRating > all[j].AvgRating })
	return all
}

func pct(part, total int) int {
	if total == 0 {
		return 0
	}
	return round(float64(part) / float64(total) * 100)
}

func round(x float64) int {
	return int(math.Round(x))
}
