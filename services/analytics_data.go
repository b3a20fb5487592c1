package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase"
)

// AnalyticsRow holds visit and reaction counts for one item.
type AnalyticsRow struct {
	Index     int            `json:"index"`
	ItemID    string         `json:"item_id"`
	Name      string         `json:"name"`
	Visits    int            `json:"visits"`
	Reactions map[string]int `json:"reactions"`
}

// AnalyticsData holds everything needed to render a property's analytics.
type AnalyticsData struct {
	PropertyID     string         `json:"property_id"`
	PropertyName   string         `json:"property_name"`
	Address        string         `json:"address"`
	GeneratedDate  string         `json:"generated_date"`
	Rows           []AnalyticsRow `json:"rows"`
	TotalVisits    int            `json:"total_visits"`
	TotalReactions map[string]int `json:"total_reactions"`
}

// BuildAnalyticsData counts visits and reactions for every item of a property.
func BuildAnalyticsData(app *pocketbase.PocketBase, propertyID string) (*AnalyticsData, error) {
	property, err := app.FindRecordById("properties", propertyID)
	if err != nil {
		return nil, fmt.Errorf("property %s not found: %w", propertyID, err)
	}

	items, err := LoadPropertyItems(app, propertyID, nil)
	if err != nil {
		return nil, err
	}

	params := map[string]any{"propertyId": propertyID}
	visits, err := app.FindRecordsByFilter("item_visits", "item.property = {:propertyId}", "", 0, 0, params)
	if err != nil {
		return nil, fmt.Errorf("load visits: %w", err)
	}
	reactions, err := app.FindRecordsByFilter("item_reactions", "item.property = {:propertyId}", "", 0, 0, params)
	if err != nil {
		return nil, fmt.Errorf("load reactions: %w", err)
	}

	visitCount := make(map[string]int, len(items))
	for _, v := range visits {
		visitCount[v.GetString("item")]++
	}
	reactionCount := make(map[string]map[string]int, len(items))
	for _, r := range reactions {
		itemID := r.GetString("item")
		if reactionCount[itemID] == nil {
			reactionCount[itemID] = map[string]int{}
		}
		reactionCount[itemID][r.GetString("reaction")]++
	}

	data := &AnalyticsData{
		PropertyID:     property.Id,
		PropertyName:   property.GetString("name"),
		Address:        property.GetString("address"),
		GeneratedDate:  time.Now().Format("02 Jan 2006"),
		Rows:           make([]AnalyticsRow, 0, len(items)),
		TotalReactions: map[string]int{},
	}
	for i, it := range items {
		row := AnalyticsRow{
			Index:     i + 1,
			ItemID:    it.ID,
			Name:      it.Name,
			Visits:    visitCount[it.ID],
			Reactions: map[string]int{},
		}
		for kind, n := range reactionCount[it.ID] {
			row.Reactions[kind] = n
			data.TotalReactions[kind] += n
		}
		data.TotalVisits += row.Visits
		data.Rows = append(data.Rows, row)
	}
	return data, nil
}
