package navigation

import navmodels "github.com/goliatone/go-navtree/navigation"

type (
	Menu = navmodels.Menu
	Item = navmodels.Item
)
