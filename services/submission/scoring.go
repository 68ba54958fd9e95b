package submission

// Result is what Submit reports back to the learner.
type Result struct {
	Score      int `json:"score"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Item is one answered question as seen by the scorer. Scored is false for
// questions that do not count, such as attitude or behaviour sections.
type Item struct {
	Scored  bool
	Correct bool
}

// Score counts correct scored items over all scored items.
func Score(items []Item) Result {
	var r Result
	for _, it := range items {
		if !it.Scored {
			continue
		}
		r.Total++
		if it.Correct {
			r.Score++
		}
	}
	r.Percentage = Percentage(r.Score, r.Total)
	return r
}

// Percentage is round(100*score/total) with halves rounded up; 0 when total is 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*score + total) / (2 * total)
}
