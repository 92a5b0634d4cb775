package contract

const (
	cursorDirBase  = "vnd.android.cursor.dir"
	cursorItemBase = "vnd.android.cursor.item"
)

// MIME types returned for collection ("dir") and single row ("item") results
var (
	WeatherContentType      = cursorDirBase + "/" + Authority + "/" + PathWeather
	WeatherContentItemType  = cursorItemBase + "/" + Authority + "/" + PathWeather
	LocationContentType     = cursorDirBase + "/" + Authority + "/" + PathLocation
	LocationContentItemType = cursorItemBase + "/" + Authority + "/" + PathLocation
)
