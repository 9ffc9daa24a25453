package api

import (
	"fmt"
	"net/http"

	"nomimap/app"
)

type Endpoint struct {
	Name        string
	Path        string
	Method      string
	Params      []*Param
	Response    []*Value
	Description string
}

type Param struct {
	Name        string
	Value       string
	Description string
}

type Value struct {
	Type   string
	Params []*Param
}

var filterParams = []*Param{
	{
		Name:        "useCase",
		Value:       "string (repeatable)",
		Description: "Keep places whose use case matches any of the values",
	},
	{
		Name:        "priceRange",
		Value:       "string (repeatable)",
		Description: "Keep places whose price range matches any of the values",
	},
	{
		Name:        "area",
		Value:       "string",
		Description: "Area preset id; keeps places within the preset radius",
	},
}

var placeParams = []*Param{
	{
		Name:        "key",
		Value:       "string",
		Description: "Venue key, shared by every review of the same place",
	},
	{
		Name:        "name",
		Value:       "string",
		Description: "Place name",
	},
	{
		Name:        "lat",
		Value:       "number",
		Description: "Latitude in degrees",
	},
	{
		Name:        "lng",
		Value:       "number",
		Description: "Longitude in degrees",
	},
	{
		Name:        "category",
		Value:       "string",
		Description: "Use case, drives the marker colour",
	},
	{
		Name:        "url",
		Value:       "string",
		Description: "Map link from the sheet",
	},
	{
		Name:        "address",
		Value:       "string",
		Description: "Address",
	},
	{
		Name:        "detail",
		Value:       "object",
		Description: "Review fields: priceRange, genre, rating, score, comment, groupSize, privateRoom, smoking, facilities, visitDate, handlename",
	},
}

var Endpoints = []*Endpoint{{
	Name:        "Places",
	Path:        "/api/places",
	Method:      "GET",
	Description: "List every place from the sheet. With filters the response also carries the filter options and the unfiltered total.",
	Params:      filterParams,
	Response: []*Value{
		{
			Type: "JSON",
			Params: []*Param{
				{
					Name:        "places",
					Value:       "array",
					Description: "Places in sheet order",
				},
				{
					Name:        "options",
					Value:       "object",
					Description: "useCases, priceRanges and areas available for filtering (filtered requests only)",
				},
				{
					Name:        "total",
					Value:       "number",
					Description: "Number of places before filtering (filtered requests only)",
				},
			},
		},
	},
}, {
	Name:        "Place fields",
	Path:        "/api/places",
	Method:      "GET",
	Description: "Fields of each entry in the places array.",
	Response: []*Value{
		{
			Type:   "JSON",
			Params: placeParams,
		},
	},
}, {
	Name:        "Places GeoJSON",
	Path:        "/api/places.geojson",
	Method:      "GET",
	Description: "The filtered places as a GeoJSON FeatureCollection with a bounding box.",
	Params:      filterParams,
	Response: []*Value{
		{
			Type: "GeoJSON",
			Params: []*Param{
				{
					Name:        "features",
					Value:       "array",
					Description: "One Point feature per place, id is the venue key; properties carry name, category, color, address, url, plusCode, priceRange, genre, rating and score",
				},
				{
					Name:        "bbox",
					Value:       "array",
					Description: "Bounds of the returned features",
				},
			},
		},
	},
}, {
	Name:        "Places CSV",
	Path:        "/api/places.csv",
	Method:      "GET",
	Description: "The filtered places as CSV.",
	Params:      filterParams,
	Response: []*Value{
		{
			Type: "CSV",
			Params: []*Param{
				{
					Name:        "columns",
					Value:       "string",
					Description: "address, category, genre, key, lat, lng, name, plus_code, price_range, rating, score, url",
				},
			},
		},
	},
}, {
	Name:        "Search",
	Path:        "/api/places/search",
	Method:      "GET",
	Description: "Keyword search over name, category, genre and comment.",
	Params: []*Param{
		{
			Name:        "q",
			Value:       "string",
			Description: "Search words, all of which must match",
		},
	},
	Response: []*Value{
		{
			Type: "JSON",
			Params: []*Param{
				{
					Name:        "query",
					Value:       "string",
					Description: "The query as received",
				},
				{
					Name:        "places",
					Value:       "array",
					Description: "Matching places in sheet order",
				},
			},
		},
	},
}, {
	Name:        "Area presets",
	Path:        "/api/presets",
	Method:      "GET",
	Description: "The area presets usable as the area filter.",
	Response: []*Value{
		{
			Type: "JSON",
			Params: []*Param{
				{
					Name:        "presets",
					Value:       "array",
					Description: "id, label, center {lat, lng} and radiusKm",
				},
			},
		},
	},
}, {
	Name:        "Place detail",
	Path:        "/place",
	Method:      "GET",
	Description: "Every review of one venue, newest first. Send Accept: application/json for JSON.",
	Params: []*Param{
		{
			Name:        "key",
			Value:       "string",
			Description: "Venue key from /api/places",
		},
	},
	Response: []*Value{
		{
			Type: "JSON",
			Params: []*Param{
				{
					Name:        "name",
					Value:       "string",
					Description: "Place name",
				},
				{
					Name:        "reviews",
					Value:       "array",
					Description: "Reviews, latest first",
				},
			},
		},
	},
}, {
	Name:        "Status",
	Path:        "/status",
	Method:      "GET",
	Description: "Service health.",
	Response: []*Value{
		{
			Type: "JSON",
			Params: []*Param{
				{
					Name:        "healthy",
					Value:       "bool",
					Description: "Whether every check passes",
				},
				{
					Name:        "checks",
					Value:       "array",
					Description: "Per component status",
				},
			},
		},
	},
}}

// Register an endpoint
func Register(ep *Endpoint) {
	Endpoints = append(Endpoints, ep)
}

// Markdown API document
func Markdown() string {
	var data string

	data += "# API Documentation\n\n"
	data += "## Errors\n\n"
	data += "Data endpoints answer `Cache-Control: no-store` and report failures as JSON:\n\n"
	data += "- **500** `{\"error\":\"Missing env\",\"detail\":{\"SHEETS_KEY\":true,...}}` when the sheet is not configured\n"
	data += "- **502** `{\"error\":\"Sheets API error\",\"detail\":\"...\"}` when the sheet fetch fails\n"
	data += "- **500** `{\"error\":\"...\"}` for anything else\n\n"
	data += "Example:\n"
	data += "```bash\n"
	data += "curl 'https://example.com/api/places?useCase=普段飲み&area=akasaka'\n"
	data += "```\n\n"
	data += "---\n\n"
	data += "## Endpoints\n\n"

	for _, endpoint := range Endpoints {
		data += "## " + endpoint.Name
		data += fmt.Sprintln()
		data += fmt.Sprintln()
		data += fmt.Sprintln(endpoint.Description)
		data += fmt.Sprintln()
		data += fmt.Sprintf("```%s %s```", endpoint.Method, endpoint.Path)
		data += fmt.Sprintln()
		data += fmt.Sprintln()

		if endpoint.Params != nil {
			data += fmt.Sprintln("#### Query")
			data += fmt.Sprintln()
			data += "| Field | Type | Description |"
			data += fmt.Sprintln()
			data += "| ----- | ---- | ----------- |"
			data += fmt.Sprintln()

			for _, param := range endpoint.Params {
				data += fmt.Sprintf("|	%s	|	%s	|	%s	|", param.Name, param.Value, param.Description)
				data += fmt.Sprintln()
			}
			data += fmt.Sprintln()
		}

		if endpoint.Response != nil {
			data += fmt.Sprintln("#### Response")
			data += fmt.Sprintln()
			for _, resp := range endpoint.Response {
				data += fmt.Sprintf("Format: %s", resp.Type)
				data += fmt.Sprintln()
				data += fmt.Sprintln()
				data += "| Field | Type | Description |"
				data += fmt.Sprintln()
				data += "| ----- | ---- | ----------- |"
				data += fmt.Sprintln()
				for _, param := range resp.Params {
					data += fmt.Sprintf("|	%s	|	%s	|	%s	|", param.Name, param.Value, param.Description)
					data += fmt.Sprintln()
				}
				data += fmt.Sprintln()
			}
		}

		data += fmt.Sprintln()
	}

	return data
}

// Handler serves the rendered API document
func Handler() http.Handler {
	page := app.RenderHTML("API", "API documentation", string(app.Render([]byte(Markdown()))))
	return app.ServeHTML(page)
}
