package all

import (
	// Import all the source drivers so they register themselves
	_ "ecomdb/sources/csv"
	_ "ecomdb/sources/excel"
	_ "ecomdb/sources/html"
)
