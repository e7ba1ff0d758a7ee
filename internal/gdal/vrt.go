// Package gdal builds text artifacts for GDAL command-line tools: a GDAL_WMS
// virtual raster descriptor for a tile template and a matching gdal_translate call.
package gdal

import (
	"encoding/xml"
	"strconv"
)

// DefaultTileLevel is the zoom level GDAL reads when the caller knows no max zoom
const DefaultTileLevel = 15

// Web Mercator extent in meters
const mercatorExtent = "20037508.34"

// GDAL_WMS XML structures
type wmsDescriptor struct {
	XMLName            xml.Name   `xml:"GDAL_WMS"`
	Service            wmsService `xml:"Service"`
	DataWindow         dataWindow `xml:"DataWindow"`
	Projection         string     `xml:"Projection"`
	BlockSizeX         int        `xml:"BlockSizeX"`
	BlockSizeY         int        `xml:"BlockSizeY"`
	BandsCount         int        `xml:"BandsCount"`
	ZeroBlockHttpCodes string     `xml:"ZeroBlockHttpCodes"`
	Cache              *struct{}  `xml:"Cache"`
}

type wmsService struct {
	Name      string `xml:"name,attr"`
	ServerURL string `xml:"ServerUrl"`
}

type dataWindow struct {
	UpperLeftX  string `xml:"UpperLeftX"`
	UpperLeftY  string `xml:"UpperLeftY"`
	LowerRightX string `xml:"LowerRightX"`
	LowerRightY string `xml:"LowerRightY"`
	TileLevel   int    `xml:"TileLevel"`
	TileCountX  int    `xml:"TileCountX"`
	TileCountY  int    `xml:"TileCountY"`
	YOrigin     string `xml:"YOrigin"`
}

// VirtualRaster describes an XYZ tile source as a GDAL_WMS TMS dataset
type VirtualRaster struct {
	TileURL   string // {x}, {y} and {z} placeholders are kept as-is
	TileSize  int
	TileLevel int
}

// XML renders the descriptor, indented
func (v VirtualRaster) XML() string {
	level := v.TileLevel
	if level <= 0 {
		level = DefaultTileLevel
	}

	doc := wmsDescriptor{
		Service: wmsService{Name: "TMS", ServerURL: v.TileURL},
		DataWindow: dataWindow{
			UpperLeftX:  "-" + mercatorExtent,
			UpperLeftY:  mercatorExtent,
			LowerRightX: mercatorExtent,
			LowerRightY: "-" + mercatorExtent,
			TileLevel:   level,
			TileCountX:  1,
			TileCountY:  1,
			YOrigin:     "top",
		},
		Projection:         "EPSG:3857",
		BlockSizeX:         v.TileSize,
		BlockSizeY:         v.TileSize,
		BandsCount:         3,
		ZeroBlockHttpCodes: "204,404",
		Cache:              &struct{}{},
	}

	// Marshalling plain strings and ints cannot fail
	out, _ := xml.MarshalIndent(doc, "", "  ")
	return string(out)
}

// BuildVirtualRasterXML returns the descriptor for a tile template at the default tile level
func BuildVirtualRasterXML(tileURL string, tileSize int) string {
	return VirtualRaster{TileURL: tileURL, TileSize: tileSize}.XML()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
