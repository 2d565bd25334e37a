package synth

import "github.com/huangsam/repometrics/schema"

// Definitions returns how each synthesized column is derived, in draw order.
// U(a,b) is a uniform draw; cf and pf are the complexity and popularity factors.
func Definitions() []schema.MetricDefinition {
	return []schema.MetricDefinition{
		{Name: schema.ColLOC, Kind: schema.ProcessKind, Description: "Estimated lines of code", Formula: "round(size_kb * U(8,15))", Bounds: ">= 0"},
		{Name: schema.ColComments, Kind: schema.ProcessKind, Description: "Estimated comment lines", Formula: "round(loc * U(0.05,0.20))", Bounds: ">= 0"},
		{Name: schema.ColReleasesCount, Kind: schema.ProcessKind, Description: "Estimated releases", Formula: "round(age_years * U(2,8))", Bounds: ">= 0"},
		{Name: schema.ColCBO, Kind: schema.QualityKind, Description: "Coupling Between Objects", Formula: "clamp(2 + 4*cf + 0.5*pf + U(-2,2), 1, 25)", Bounds: "[1, 25]"},
		{Name: schema.ColDIT, Kind: schema.QualityKind, Description: "Depth of Inheritance Tree", Formula: "clamp(1 + 2*cf + 0.3*age_years + U(-0.5,0.5), 0, 8)", Bounds: "[0, 8]"},
		{Name: schema.ColLCOM, Kind: schema.QualityKind, Description: "Lack of Cohesion of Methods", Formula: "clamp(0.2 + 0.3*cf + U(-0.1,0.1), 0, 1)", Bounds: "[0, 1]"},
		{Name: schema.ColWMC, Kind: schema.QualityKind, Description: "Weighted Methods per Class", Formula: "max(1, round(10 + 30*cf + 5*pf + U(-5,10)))", Bounds: ">= 1"},
		{Name: schema.ColRFC, Kind: schema.QualityKind, Description: "Response For a Class", Formula: "max(1, round(5 + 25*cf + U(-3,8)))", Bounds: ">= 1"},
		{Name: schema.ColLCOM3, Kind: schema.QualityKind, Description: "Lack of Cohesion (Henderson-Sellers)", Formula: "clamp(lcom + U(-0.05,0.05), 0, 1)", Bounds: "[0, 1]"},
		{Name: schema.ColCA, Kind: schema.QualityKind, Description: "Afferent Coupling", Formula: "max(0, round(1 + 8*cf + 2*pf + U(-2,3)))", Bounds: ">= 0"},
		{Name: schema.ColCE, Kind: schema.QualityKind, Description: "Efferent Coupling", Formula: "max(0, round(1 + 12*cf + U(-3,4)))", Bounds: ">= 0"},
		{Name: schema.ColNPM, Kind: schema.QualityKind, Description: "Number of Public Methods", Formula: "max(0, round(3 + 15*cf + U(-2,5)))", Bounds: ">= 0"},
	}
}
