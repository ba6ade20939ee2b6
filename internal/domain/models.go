package domain

// Chair is a furniture listing. Stock never goes below zero.
type Chair struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Thumbnail   string `db:"thumbnail" json:"thumbnail"`
	Price       int64  `db:"price" json:"price"`
	Height      int64  `db:"height" json:"height"`
	Width       int64  `db:"width" json:"width"`
	Depth       int64  `db:"depth" json:"depth"`
	Color       string `db:"color" json:"color"`
	Features    string `db:"features" json:"features"` // comma-joined
	Kind        string `db:"kind" json:"kind"`
	Popularity  int64  `db:"popularity" json:"popularity"`
	Stock       int64  `db:"stock" json:"stock"`
}

// Estate is a real-estate listing.
type Estate struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description string  `db:"description" json:"description"`
	Thumbnail   string  `db:"thumbnail" json:"thumbnail"`
	Address     string  `db:"address" json:"address"`
	Latitude    float64 `db:"latitude" json:"latitude"`
	Longitude   float64 `db:"longitude" json:"longitude"`
	Rent        int64   `db:"rent" json:"rent"`
	DoorHeight  int64   `db:"door_height" json:"doorHeight"`
	DoorWidth   int64   `db:"door_width" json:"doorWidth"`
	Features    string  `db:"features" json:"features"`
	Popularity  int64   `db:"popularity" json:"popularity"`
}

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// BoundingBox is the axis-aligned box around a set of coordinates.
type BoundingBox struct {
	MinLatitude  float64
	MaxLatitude  float64
	MinLongitude float64
	MaxLongitude float64
}

// BoundingBoxOf returns the box around coords. coords must not be empty.
func BoundingBoxOf(coords []Coordinate) BoundingBox {
	b := BoundingBox{
		MinLatitude: coords[0].Latitude, MaxLatitude: coords[0].Latitude,
		MinLongitude: coords[0].Longitude, MaxLongitude: coords[0].Longitude,
	}
	for _, c := range coords[1:] {
		b.MinLatitude = min(b.MinLatitude, c.Latitude)
		b.MaxLatitude = max(b.MaxLatitude, c.Latitude)
		b.MinLongitude = min(b.MinLongitude, c.Longitude)
		b.MaxLongitude = max(b.MaxLongitude, c.Longitude)
	}
	return b
}
