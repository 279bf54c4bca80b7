package generator

// Static vocabulary the generator draws from.

var suppliers = []string{
	"Global Supply Co.",
	"TechParts Inc.",
	"FarmFresh Distributors",
	"ElectroParts Ltd.",
	"Acme Industries",
	"MegaStore Supplies",
	"Quality Hardware Corp",
	"Eastern Manufacturing",
	"Western Distributors",
	"Northern Goods Ltd.",
	"Southern Products Inc.",
	"Continental Exports",
	"Precision Parts Co.",
	"Bulk Warehouse Supplies",
	"Reliable Goods Inc.",
	"Prime Distribution Center",
	"EcoFriendly Materials",
	"Industrial Solutions Group",
	"Commercial Supply Chain",
	"Wholesale Distributors Inc.",
}

// categoryKeys fixes the iteration order of categoryItems so that category
// draws are reproducible under a seeded source.
var categoryKeys = []string{"ELEC", "TOOL", "FOOD", "AUTO", "CHEM", "FURN", "TEXT", "PACK"}

var categoryItems = map[string][]string{
	"ELEC": {
		"LED Light", "Power Adapter", "HDMI Cable", "Circuit Board", "Capacitor",
		"Resistor", "Battery Pack", "Solar Panel", "Voltage Regulator", "Transistor",
	},
	"TOOL": {
		"Hammer", "Wrench Set", "Power Drill", "Measuring Tape", "Screwdriver",
		"Circular Saw", "Pliers", "Level Tool", "Socket Set", "Utility Knife",
	},
	"FOOD": {
		"Organic Flour", "Canned Beans", "Rice", "Pasta", "Cooking Oil",
		"Spice Mix", "Dried Fruit", "Baking Powder", "Sugar", "Salt",
	},
	"AUTO": {
		"Oil Filter", "Brake Pad", "Spark Plug", "Wiper Blade", "Air Filter",
		"Timing Belt", "Radiator Cap", "Transmission Fluid", "Battery Terminal", "Headlight Bulb",
	},
	"CHEM": {
		"Industrial Cleaner", "Adhesive", "Paint", "Solvent", "Lubricant",
		"Epoxy Resin", "Rust Converter", "Degreaser", "PVC Cement", "Silicone Sealant",
	},
	"FURN": {
		"Office Chair", "Desk", "Bookshelf", "Cabinet", "Table",
		"Filing Cabinet", "Ergonomic Keyboard Tray", "Monitor Stand", "Lamp", "Drawer Unit",
	},
	"TEXT": {
		"Cotton Fabric", "Polyester Blend", "Upholstery Material", "Canvas", "Denim",
		"Microfiber Cloth", "Nylon Webbing", "Elastic Band", "Velcro Strip", "Thread Spool",
	},
	"PACK": {
		"Cardboard Box", "Bubble Wrap", "Packing Tape", "Plastic Container", "Shipping Label",
		"Foam Insert", "Padded Envelope", "Shrink Wrap", "Pallet Wrap", "Void Fill",
	},
}

var adjectives = []string{
	"Premium", "Standard", "Industrial", "Commercial", "Professional",
	"Basic", "Advanced", "Essential", "Heavy-Duty", "Lightweight",
	"Organic", "Synthetic", "Reinforced", "Insulated", "Waterproof",
}

var specifications = []string{
	"Large", "Small", "Medium", "Compact", "Portable",
	"High-Capacity", "Long-Lasting", "Quick-Release", "Adjustable", "Universal",
	"Foldable", "Stackable", "Expandable", "Modular", "Customizable",
}

var measurements = []string{
	"10mm", "50cm", "1L", "5kg", "2m",
	"100g", "250ml", "12in", "30cm", "6oz",
	"15cm", "500g", "750ml", "25mm", "8ft",
}
