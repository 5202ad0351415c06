// Package samples holds the reference articles used for smoke checks,
// warm-up and the sample listing.
package samples

import "github.com/baditaflorin/go_fakenews/internal/core/domain"

// Sample is a reference article with the label a healthy model assigns it.
type Sample struct {
	Name     string       `json:"name"`
	Expected domain.Label `json:"-"`
	Text     string       `json:"text"`
}

// RealArticle is the canonical real news sample.
const RealArticle = "NASA's Perseverance rover successfully landed on Mars on February 18, 2021, beginning its mission to search for signs of ancient microbial life."

// FakeArticle is the canonical fake news sample.
const FakeArticle = "BREAKING: Scientists discover that drinking hot water with lemon every morning can cure cancer in just 7 days! The medical establishment has been hiding this simple cure for decades."

// SmokeArticle is a neutral text used to check that artifacts can predict at all.
const SmokeArticle = "This is a test article about science and technology."

// All returns the labelled samples, real first.
func All() []Sample {
	return []Sample{
		{Name: "real", Expected: domain.Real, Text: RealArticle},
		{Name: "fake", Expected: domain.Fake, Text: FakeArticle},
	}
}
