package prompts

import "math/rand/v2"

var dailyTips = []string{
	"Drink at least 8 glasses of water today!",
	"Take a 10-minute walk to boost your mood and energy.",
	"Practice deep breathing for 5 minutes to reduce stress.",
	"Eat a serving of fruits and vegetables with each meal.",
	"Get 7-9 hours of sleep tonight for optimal health.",
}

// DailyTip picks a tip using r, or the global source when r is nil.
func DailyTip(r *rand.Rand) string {
	if r == nil {
		return dailyTips[rand.IntN(len(dailyTips))]
	}
	return dailyTips[r.IntN(len(dailyTips))]
}

// Tips returns every tip DailyTip can choose from.
func Tips() []string {
	out := make([]string, len(dailyTips))
	copy(out, dailyTips)
	return out
}
