package formula

// Catalog holds the built-in resin formulas shipped with the product.
// Override rows in the formula store take precedence by exact name.
var Catalog = []Formula{
	{
		Name:    "Epoxy Resin",
		Builtin: true,
		Materials: []Material{
			{Name: "Bisphenol-A", Ratio: 1},
			{Name: "Epichlorohydrin", Ratio: 10},
			{Name: "NaOH", Ratio: 0.2},
		},
	},
	{
		Name:    "Alkyd Resin",
		Builtin: true,
		Materials: []Material{
			{Name: "Phthalic Anhydride", Ratio: 28},
			{Name: "Glycerol", Ratio: 12},
			{Name: "Linseed Oil", Ratio: 60},
		},
	},
	{
		Name:    "Acrylic Resin",
		Builtin: true,
		Materials: []Material{
			{Name: "MMA", Ratio: 70},
			{Name: "BA", Ratio: 25},
			{Name: "Styrene", Ratio: 5},
			{Name: "Initiator", Ratio: 1},
		},
	},
	{
		Name:    "Phenolic Resin",
		Builtin: true,
		Materials: []Material{
			{Name: "Phenol", Ratio: 1},
			{Name: "Formaldehyde", Ratio: 2},
			{Name: "Catalyst", Ratio: 0.01},
		},
	},
}

func catalogLookup(name string) (Formula, bool) {
	for _, f := range Catalog {
		if f.Name == name {
			return f, true
		}
	}
	return Formula{}, false
}
