package weather

// Data is one day (or the current moment) of weather for a location.
type Data struct {
	Date        string  `json:"date"`
	Main        string  `json:"main"`
	Temp        float64 `json:"temp"`
	Description string  `json:"description,omitempty"`
}

type Response struct {
	Count    int    `json:"count"`
	Unit     string `json:"unit"`
	Location string `json:"location"`
	Data     []Data `json:"data"`
}
