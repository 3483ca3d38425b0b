package pipeline

import (
	"sort"
	"strings"

	"github.com/letmecheque/letmecheque/internal/model"
)

// RankPlatforms returns a copy of platforms sorted by average spend per
// user, highest first. Ties keep their input order.
func RankPlatforms(platforms []model.Platform) []model.Platform {
	out := make([]model.Platform, len(platforms))
	copy(out, platforms)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AvgSpendPerUser > out[j].AvgSpendPerUser
	})
	return out
}

// ClassifyLocation reports whether name is one of the high-spend zones.
func ClassifyLocation(name string, highSpend []string) model.LocationAlert {
	name = strings.TrimSpace(name)
	alert := model.LocationAlert{Location: name}
	for _, h := range highSpend {
		if strings.EqualFold(h, name) {
			alert.HighSpend = true
			break
		}
	}
	return alert
}
