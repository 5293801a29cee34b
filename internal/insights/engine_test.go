package insights_test

import (
	"encoding/json"
	"reflect"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"review_insights/internal/domain"
	"review_insights/internal/insights"
)

func ptr[T any](v T) *T { return &v }

func review(entity, text string, rating int, s domain.Sentiment, conf float64) domain.Review {
	return domain.Review{Entity: entity, Text: text, Rating: ptr(rating), Sentiment: s, Confidence: conf}
}

func repeat(n int, r domain.Review) []domain.Review {
	out := make([]domain.Review, n)
	for i := range out {
		out[i] = r
	}
	return out
}

func TestEngine_AnalyzeEntity(t *testing.T) {
	Convey("Given an engine with the default taxonomy and a threshold of 5", t, func() {
		eng := insights.NewEngine(insights.DefaultTaxonomy(), insights.WithMinMentions(5))

		Convey("When six negative reviews say the login is broken", func() {
			rs := repeat(6, review("X", "login is broken", 1, domain.SentimentNegative, 0.9))
			rs = append(rs, repeat(4, review("X", "the app is slow", 2, domain.SentimentNegative, 0.8))...)
			out := eng.AnalyzeEntity("X", rs)

			Convey("Then login is reported with six mentions and the formula severity", func() {
				var login *domain.PainPoint
				for i := range out.PainPoints {
					if out.PainPoints[i].Type == "login" {
						login = &out.PainPoints[i]
					}
				}
				So(login, ShouldNotBeNil)
				So(login.Mentions, ShouldEqual, 6)
				So(login.Severity, ShouldAlmostEqual, 0.45, 1e-9)
				So(login.EvidenceCount, ShouldEqual, 10)
				So(len(login.Examples), ShouldEqual, 3)
			})

			Convey("And categories under the threshold are absent", func() {
				for _, pp := range out.PainPoints {
					So(pp.Type, ShouldNotEqual, "slow")
				}
				So(len(out.PainPoints), ShouldEqual, 2)
			})

			Convey("And equal severities keep taxonomy order", func() {
				So(out.PainPoints[0].Type, ShouldEqual, "crash")
				So(out.PainPoints[1].Type, ShouldEqual, "login")
			})

			Convey("And both pain points become high priority recommendations", func() {
				So(out.Recommendations[0].PainPointTiedTo, ShouldEqual, "crash")
				So(out.Recommendations[0].Priority, ShouldEqual, domain.PriorityHigh)
				So(out.Recommendations[1].Title, ShouldEqual, "Enhance Authentication System")
				So(out.Recommendations[1].Evidence, ShouldEqual, "6 mentions in negative reviews")
			})

			Convey("And opportunities follow for the missing drivers", func() {
				So(len(out.Recommendations), ShouldEqual, 4)
				So(out.Recommendations[2].Opportunity, ShouldBeTrue)
				So(out.Recommendations[2].PainPointTiedTo, ShouldEqual, domain.TiedToOpportunity)
				So(out.Recommendations[2].Priority, ShouldEqual, domain.PriorityLow)
				So(out.Recommendations[3].Opportunity, ShouldBeTrue)
			})

			Convey("And there are no drivers", func() {
				So(out.Drivers, ShouldNotBeNil)
				So(out.Drivers, ShouldBeEmpty)
			})
		})

		Convey("When an entity has only positive reviews", func() {
			rs := repeat(5, review("Y", "fast and secure", 5, domain.SentimentPositive, 0.9))
			out := eng.AnalyzeEntity("Y", rs)

			Convey("Then pain points are an empty list rather than null", func() {
				b, err := json.Marshal(out)
				So(err, ShouldBeNil)
				So(string(b), ShouldContainSubstring, `"pain_points":[]`)
			})

			Convey("And the general recommendation is still produced", func() {
				So(out.Recommendations[0].PainPointTiedTo, ShouldEqual, domain.TiedToGeneral)
				So(out.Recommendations[0].Evidence, ShouldEqual, "0 pain points identified")
			})

			Convey("And statistics count every review", func() {
				So(out.Statistics.TotalReviews, ShouldEqual, 5)
				So(out.Statistics.AverageRating, ShouldEqual, 5.0)
				So(out.Statistics.PositivePct, ShouldEqual, 100.0)
			})
		})
	})

	Convey("Given a threshold of 1", t, func() {
		eng := insights.NewEngine(insights.DefaultTaxonomy(), insights.WithMinMentions(1))

		Convey("When a five star review says fast and simple", func() {
			out := eng.AnalyzeEntity("Z", []domain.Review{review("Z", "Fast and simple", 5, domain.SentimentPositive, 0.95)})

			Convey("Then it feeds both the fast and easy drivers", func() {
				So(len(out.Drivers), ShouldEqual, 2)
				So(out.Drivers[0].Type, ShouldEqual, "fast")
				So(out.Drivers[1].Type, ShouldEqual, "easy")
				So(out.Drivers[0].Strength, ShouldAlmostEqual, 0.975, 1e-9)
				So(out.Drivers[0].Examples[0].Text, ShouldEqual, "Fast and simple")
			})
		})
	})
}

func TestEngine_Properties(t *testing.T) {
	rs := []domain.Review{
		review("A", "slow and crashes all the time", 1, domain.SentimentNegative, 0.7),
		review("A", "so slow, login fails", 2, domain.SentimentNegative, 0.6),
		review("A", "fast transfers", 4, domain.SentimentPositive, 0.8),
		review("A", "quick and easy", 5, domain.SentimentPositive, 0.99),
		review("B", "network error again", 1, domain.SentimentNegative, 0.55),
		review("B", "reliable and secure", 5, domain.SentimentPositive, 0.9),
		{Entity: "B", Text: "password reset is a pain", Sentiment: domain.SentimentNegative, Confidence: 0.5},
		review("B", "slow", 3, domain.SentimentNeutral, 0.5),
	}
	eng := insights.NewEngine(insights.DefaultTaxonomy(), insights.WithMinMentions(1))

	Convey("Given a mixed multi-entity batch", t, func() {
		first := eng.Analyze(rs)
		second := eng.Analyze(rs)

		Convey("Then repeated runs are identical", func() {
			So(reflect.DeepEqual(first, second), ShouldBeTrue)
			a, _ := json.Marshal(first)
			b, _ := json.Marshal(second)
			So(string(a), ShouldEqual, string(b))
		})

		Convey("Then scores are bounded and sorted descending", func() {
			for _, ins := range first {
				for i, d := range ins.Drivers {
					So(d.Strength, ShouldBeBetweenOrEqual, 0.0, 1.0)
					So(d.Mentions, ShouldBeGreaterThanOrEqualTo, eng.MinMentions())
					if i > 0 {
						So(ins.Drivers[i-1].Strength, ShouldBeGreaterThanOrEqualTo, d.Strength)
					}
				}
				for i, p := range ins.PainPoints {
					So(p.Severity, ShouldBeBetweenOrEqual, 0.0, 1.0)
					if i > 0 {
						So(ins.PainPoints[i-1].Severity, ShouldBeGreaterThanOrEqualTo, p.Severity)
					}
				}
			}
		})

		Convey("Then serialized output round-trips byte for byte", func() {
			b1, err := json.Marshal(first)
			So(err, ShouldBeNil)
			var back domain.Report
			So(json.Unmarshal(b1, &back), ShouldBeNil)
			b2, err := json.Marshal(back)
			So(err, ShouldBeNil)
			So(string(b2), ShouldEqual, string(b1))
		})

		Convey("Then an unrated review with a negative label is scored as neutral rating", func() {
			var login domain.PainPoint
			for _, p := range first["B"].PainPoints {
				if p.Type == "login" {
					login = p
				}
			}
			So(login.Mentions, ShouldEqual, 1)
			So(login.Severity, ShouldAlmostEqual, 0.45, 1e-9)
			So(login.Examples[0].Rating, ShouldBeNil)
		})
	})
}

func TestNewEngine_CopiesTaxonomy(t *testing.T) {
	tax := insights.DefaultTaxonomy()
	eng := insights.NewEngine(tax)
	tax.Drivers[0].Keywords[0] = "zzz"
	tax.Drivers = nil

	got := eng.Taxonomy()
	if len(got.Drivers) != 5 || got.Drivers[0].Keywords[0] != "fast" {
		t.Fatalf("engine taxonomy changed with caller copy: %+v", got.Drivers)
	}
}
