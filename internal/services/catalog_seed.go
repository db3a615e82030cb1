package services

import "dropzone/internal/models"

// DemoCatalog returns the products the store is seeded with.
func DemoCatalog() []models.Product {
	return []models.Product{
		{
			Slug:        "stealth-hoodie",
			Name:        "Stealth Hoodie",
			Description: "Matte black heavyweight hoodie with reflective piping.",
			Price:       120.0,
			Category:    "hoodies",
			Accent:      "#7CFF2E",
			Images: models.StringList{
				"https://images.unsplash.com/photo-1516826957135-700dedea698c?q=80&w=1600&auto=format&fit=crop",
				"https://images.unsplash.com/photo-1515378791036-0648a3ef77b2?q=80&w=1600&auto=format&fit=crop",
			},
			Sizes: models.SizeStocks{
				{Size: "S", Stock: 8},
				{Size: "M", Stock: 2},
				{Size: "L", Stock: 0},
				{Size: "XL", Stock: 5},
			},
			IsLimited: true,
		},
		{
			Slug:        "crest-tee",
			Name:        "Crest Tee",
			Description: "Concrete grey oversized tee with neon crest.",
			Price:       55.0,
			Category:    "tees",
			Accent:      "#00E5FF",
			Images: models.StringList{
				"https://images.unsplash.com/photo-1519741497674-611481863552?q=80&w=1600&auto=format&fit=crop",
				"https://images.unsplash.com/photo-1490481651871-ab68de25d43d?q=80&w=1600&auto=format&fit=crop",
			},
			Sizes: models.SizeStocks{
				{Size: "S", Stock: 15},
				{Size: "M", Stock: 12},
				{Size: "L", Stock: 6},
				{Size: "XL", Stock: 1},
			},
			IsLimited: false,
		},
		{
			Slug:        "volt-sneaker",
			Name:        "Volt Sneaker",
			Description: "Electric green accent sneaker with urban tread.",
			Price:       220.0,
			Category:    "sneakers",
			Accent:      "#7CFF2E",
			Images: models.StringList{
				"https://images.unsplash.com/photo-1542291026-7eec264c27ff?q=80&w=1600&auto=format&fit=crop",
				"https://images.unsplash.com/photo-1525966222134-fcfa99b8ae77?q=80&w=1600&auto=format&fit=crop",
			},
			Sizes: models.SizeStocks{
				{Size: "7", Stock: 3},
				{Size: "8", Stock: 0},
				{Size: "9", Stock: 4},
				{Size: "10", Stock: 2},
			},
			IsLimited: true,
		},
	}
}
