package destination

// Attributes son las features de preferencia derivadas de datos de OSM.
type Attributes struct {
	City               string `json:"city"`
	Place              Place  `json:"place"`
	TotalAttractions   int    `json:"total_attractions"`
	AttractionsQuality int    `json:"attractions_quality"`
	ActivitiesMatch    int    `json:"activities_match"`
}

const (
	attractionsPerQualityStep  = 40
	attractionsPerActivityStep = 80
)

// AttributesFromCount mapea el conteo de atracciones a las escalas 1-5 y 0-2.
func AttributesFromCount(total int) Attributes {
	if total < 0 {
		total = 0
	}
	return Attributes{
		TotalAttractions:   total,
		AttractionsQuality: min(total/attractionsPerQualityStep+1, 5),
		ActivitiesMatch:    min(total/attractionsPerActivityStep, 2),
	}
}
