package verification

// Result is the verdict the vision model returns for one submitted photo.
type Result struct {
	Valid    bool   `json:"valid"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}
