package domain

// starterCatalog maps each room type to its fixed starter furniture. Prices
// are catalog list prices in INR and are not negotiable.
var starterCatalog = map[RoomType][]FurnitureItem{
	RoomBedroom: {
		{ID: "b1", Name: "Premium Teak Bed", Type: "Bedding", Price: 72500, Link: "https://www.ikea.com/in/en/", Source: SourceIKEA},
		{ID: "b2", Name: "Memory Foam Mattress", Type: "Bedding", Price: 45000, Link: "https://www.amazon.in/", Source: SourceAmazon},
		{ID: "b3", Name: "Smart Wardrobe 4-Door", Type: "Storage", Price: 85000, Link: "https://www.flipkart.com/", Source: SourceFlipkart},
	},
	RoomLivingRoom: {
		{ID: "l1", Name: "Italian Leather Sofa", Type: "Seating", Price: 145000, Link: "https://www.amazon.in/", Source: SourceAmazon},
		{ID: "l2", Name: "Marble Top Coffee Table", Type: "Furniture", Price: 28000, Link: "https://www.ikea.com/in/en/", Source: SourceIKEA},
		{ID: "l3", Name: "85\" QLED Display", Type: "Electronics", Price: 195000, Link: "https://www.flipkart.com/", Source: SourceFlipkart},
	},
	RoomKitchen: {
		{ID: "k1", Name: "Modular Cabinetry Set", Type: "Kitchen", Price: 350000, Link: "https://www.ikea.com/in/en/", Source: SourceIKEA},
		{ID: "k2", Name: "Smart Dishwasher", Type: "Appliance", Price: 62000, Link: "https://www.amazon.in/", Source: SourceAmazon},
	},
	RoomBathroom: {
		{ID: "ba1", Name: "Granite Vanity Unit", Type: "Sanitary", Price: 42000, Link: "https://www.amazon.in/", Source: SourceAmazon},
		{ID: "ba2", Name: "Hydro-Massage Shower", Type: "Fixture", Price: 88000, Link: "https://www.flipkart.com/", Source: SourceFlipkart},
	},
	RoomGuestRoom: {
		{ID: "g1", Name: "Compact Queen Bed", Type: "Bedding", Price: 38000, Link: "https://www.ikea.com/in/en/", Source: SourceIKEA},
	},
	RoomDining: {
		{ID: "d1", Name: "8-Seater Walnut Table", Type: "Dining", Price: 115000, Link: "https://www.ikea.com/in/en/", Source: SourceIKEA},
	},
	RoomOffice: {
		{ID: "o1", Name: "Adjustable Standing Desk", Type: "Office", Price: 42000, Link: "https://www.amazon.in/", Source: SourceAmazon},
		{ID: "o2", Name: "High-Back Executive Chair", Type: "Office", Price: 28500, Link: "https://www.ikea.com/in/en/", Source: SourceIKEA},
	},
	RoomKidsRoom: {
		{ID: "kr1", Name: "Bunk Bed with Storage", Type: "Bedding", Price: 58000, Link: "https://www.ikea.com/in/en/", Source: SourceIKEA},
	},
}

// StarterFurniture returns a copy of the fixed furniture template for a room
// type. Unmapped types yield an empty list.
func StarterFurniture(roomType RoomType) []FurnitureItem {
	template, ok := starterCatalog[roomType]
	if !ok {
		return []FurnitureItem{}
	}
	items := make([]FurnitureItem, len(template))
	copy(items, template)
	return items
}
