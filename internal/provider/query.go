package provider

import (
	"github.com/Masterminds/squirrel"
	"github.com/skybi/sunshine/internal/contract"
)

// forecastJoin joins every weather row with the location it references
var forecastJoin = "INNER JOIN " + contract.LocationTableName + " ON " +
	contract.Qualified(contract.WeatherTableName, contract.ColumnLocationKey) + " = " +
	contract.Qualified(contract.LocationTableName, contract.ColumnID)

var (
	qualifiedLocationSetting = contract.Qualified(contract.LocationTableName, contract.ColumnLocationSetting)
	qualifiedDate            = contract.Qualified(contract.WeatherTableName, contract.ColumnDate)
)

func selectColumns(projection []string) squirrel.SelectBuilder {
	if len(projection) == 0 {
		return squirrel.Select("*")
	}
	return squirrel.Select(projection...)
}

func forecastQuery(projection []string, locationSetting string) squirrel.SelectBuilder {
	return selectColumns(projection).
		From(contract.WeatherTableName).
		JoinClause(forecastJoin).
		Where(squirrel.Eq{qualifiedLocationSetting: locationSetting})
}

func (req WeatherDir) selectQuery(projection []string) squirrel.SelectBuilder {
	return selectColumns(projection).From(contract.WeatherTableName)
}

func (req WeatherForLocation) selectQuery(projection []string) squirrel.SelectBuilder {
	return forecastQuery(projection, req.LocationSetting)
}

func (req WeatherForLocationFromDate) selectQuery(projection []string) squirrel.SelectBuilder {
	return forecastQuery(projection, req.LocationSetting).
		Where(squirrel.GtOrEq{qualifiedDate: req.StartDate})
}

func (req WeatherForLocationOnDate) selectQuery(projection []string) squirrel.SelectBuilder {
	return forecastQuery(projection, req.LocationSetting).
		Where(squirrel.Eq{qualifiedDate: req.Date})
}

func (req LocationDir) selectQuery(projection []string) squirrel.SelectBuilder {
	return selectColumns(projection).From(contract.LocationTableName)
}

func (req LocationItem) selectQuery(projection []string) squirrel.SelectBuilder {
	return selectColumns(projection).
		From(contract.LocationTableName).
		Where(squirrel.Eq{contract.ColumnID: req.ID})
}

// BuildQuery returns the select statement serving req.
// The caller predicate (if any) is combined with the one of the request using AND and the sort order is used
// verbatim.
func BuildQuery(req Request, projection []string, where squirrel.Sqlizer, sortOrder string) squirrel.SelectBuilder {
	query := req.selectQuery(projection)
	if where != nil {
		query = query.Where(where)
	}
	if sortOrder != "" {
		query = query.OrderBy(sortOrder)
	}
	return query
}
