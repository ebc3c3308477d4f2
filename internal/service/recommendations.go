package service

import (
	"fmt"

	"github.com/ra-risk-server/internal/domain"
)

// KeyMessages close every recommendation set.
var KeyMessages = []string{
	"These recommendations are personalized based on your health profile",
	"Consult with healthcare providers before making significant changes",
	"Regular monitoring and follow-up are essential for RA management",
}

// youngAdultAge is the exclusive upper age for the young-adult items.
const youngAdultAge = 30

// SelectRecommendations assembles the four guidance blocks for a context.
// The result is a deterministic function of its input.
func SelectRecommendations(rc domain.RecommendationContext) domain.RecommendationSet {
	return domain.RecommendationSet{
		Diet:           dietBlock(rc),
		Exercise:       exerciseBlock(rc.Tier),
		Lifestyle:      lifestyleBlock(rc.Lifestyle),
		MentalWellness: mentalWellnessBlock(rc.Tier, rc.Age),
		KeyMessages:    append([]string(nil), KeyMessages...),
	}
}

func dietBlock(rc domain.RecommendationContext) domain.GuidanceBlock {
	targeted := domain.GuidanceSection{
		Title: "Targeted Nutrition Based on Your Markers",
		Items: []string{},
	}

	if rc.Flags.Inflamed() {
		targeted.Items = append(targeted.Items, "High inflammation detected: Increase turmeric, ginger, and green tea intake")
	}
	if rc.Flags.Autoimmune() {
		targeted.Items = append(targeted.Items, "RA markers present: Consider reducing processed foods and increasing antioxidant-rich foods")
	}
	if rc.Age < youngAdultAge {
		targeted.Items = append(targeted.Items, "Young adult: Focus on building healthy eating habits for long-term joint health")
	}
	if rc.Lifestyle.Smoking > domain.SmokingNever {
		targeted.Items = append(targeted.Items, "Smoker: Increase vitamin C rich foods (citrus, bell peppers) to combat oxidative stress")
	}
	if rc.Lifestyle.Vegetarian {
		targeted.Items = append(targeted.Items, "Vegetarian: Ensure adequate protein from legumes, tofu, and dairy; consider B12 supplementation")
	}

	return domain.GuidanceBlock{
		Title: "Anti-Inflammatory Diet Plan",
		Sections: []domain.GuidanceSection{
			{
				Title: "Core Dietary Principles",
				Items: []string{
					"Focus on omega-3 rich foods: fatty fish (salmon, mackerel) 2x/week or flaxseed/chia for vegetarians",
					"Include 5+ servings of colorful fruits and vegetables daily",
					"Choose whole grains over refined carbohydrates",
					"Use healthy fats: olive oil, avocado, nuts, and seeds",
					"Stay hydrated with water and herbal teas",
				},
			},
			targeted,
		},
	}
}

func exerciseBlock(tier domain.SeverityTier) domain.GuidanceBlock {
	var plan domain.GuidanceSection

	switch {
	case tier.IsSevere():
		plan = domain.GuidanceSection{
			Title: "Gentle Movement Program",
			Items: []string{
				"Daily range-of-motion exercises: 10-15 minutes",
				"Seated strengthening with light resistance bands",
				"Aquatic therapy if available (reduces joint stress)",
				"Avoid high-impact activities and heavy lifting",
			},
		}
	case tier == domain.TierModerate:
		plan = domain.GuidanceSection{
			Title: "Balanced Activity Program",
			Items: []string{
				"Low-impact cardio: walking, cycling 20-30 minutes, 4-5x/week",
				"Strength training: light weights or resistance bands 2x/week",
				"Flexibility: daily stretching and yoga 1-2x/week",
				"Listen to your body - rest when needed",
			},
		}
	default:
		plan = domain.GuidanceSection{
			Title: "Active Prevention Program",
			Items: []string{
				"Regular aerobic exercise: 30 minutes most days",
				"Strength training: 2x/week focusing on major muscle groups",
				"Balance and flexibility exercises",
				"Stay active with activities you enjoy",
			},
		}
	}

	return domain.GuidanceBlock{
		Title: "Personalized Exercise Plan",
		Sections: []domain.GuidanceSection{
			plan,
			{
				Title: "Exercise Safety Tips",
				Items: []string{
					"Warm up properly before exercise",
					"Start slowly and gradually increase intensity",
					"Stop if you experience sharp pain",
					"Use proper form to protect joints",
					"Stay hydrated during exercise",
				},
			},
		},
	}
}

// HydrationTarget returns litres per day for a body weight, 35 ml per kg
// rounded to one decimal.
func HydrationTarget(weightKg float64) float64 {
	return Round1(35 * weightKg / 1000)
}

func lifestyleBlock(l domain.Lifestyle) domain.GuidanceBlock {
	hydration := domain.GuidanceSection{Title: "Hydration & Healthy Habits"}

	if l.WeightKg != nil && *l.WeightKg != 0 {
		hydration.Items = append(hydration.Items,
			fmt.Sprintf("Daily hydration goal: %sL based on your weight", FormatDecimal(HydrationTarget(*l.WeightKg))))
	} else {
		hydration.Items = append(hydration.Items, "Daily hydration: 2-3L of water")
	}

	hydration.Items = append(hydration.Items, "Choose water, herbal teas over sugary drinks")

	if l.Smoking > domain.SmokingNever {
		hydration.Items = append(hydration.Items, "Smoking cessation is strongly recommended for RA management")
	}
	if l.Drinking != domain.DrinkingNone {
		hydration.Items = append(hydration.Items, "Limit alcohol intake as it can increase inflammation")
	}

	return domain.GuidanceBlock{
		Title: "Holistic Lifestyle Guidance",
		Sections: []domain.GuidanceSection{
			{
				Title: "Sleep & Stress Management",
				Items: []string{
					"Aim for 7-9 hours of quality sleep nightly",
					"Maintain consistent sleep schedule",
					"Practice relaxation techniques: meditation, deep breathing",
					"Limit screen time before bed",
					"Create a relaxing bedtime routine",
				},
			},
			hydration,
		},
	}
}

func mentalWellnessBlock(tier domain.SeverityTier, age float64) domain.GuidanceBlock {
	support := domain.GuidanceSection{
		Title: "Support & Coping Strategies",
		Items: []string{
			"Join RA support groups (online or local)",
			"Practice pacing: balance activity with rest",
			"Keep a symptom journal to identify patterns",
			"Communicate openly with healthcare providers",
			"Set realistic goals and celebrate small victories",
		},
	}

	if age < youngAdultAge {
		support.Items = append(support.Items, "Connect with other young adults managing RA")
	}
	if tier.Rank() >= domain.TierModerate.Rank() {
		support.Items = append(support.Items, "Consider speaking with a mental health professional about coping strategies")
	}

	return domain.GuidanceBlock{
		Title: "Mental Wellness & Support",
		Sections: []domain.GuidanceSection{
			{
				Title: "Mind-Body Practices",
				Items: []string{
					"Daily mindfulness meditation: 10-15 minutes",
					"Deep breathing exercises during stressful moments",
					"Progressive muscle relaxation techniques",
					"Gentle yoga or tai chi for mind-body connection",
				},
			},
			support,
		},
	}
}
