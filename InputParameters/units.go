package InputParameters

import (
	"fmt"
	"strings"
)

type Dimension uint8

const (
	Dim_None Dimension = iota
	Dim_Length
	Dim_Power
	Dim_VolumetricFlow
	Dim_Temperature
	Dim_Pressure
)

func (d Dimension) String() string {
	return [...]string{"unitless", "length", "power", "volumetric flow rate", "temperature", "pressure"}[d]
}

// unit converts to SI as si = scale*(v + offset)
type unit struct {
	dim           Dimension
	scale, offset float64
}

var unitTable = map[string]unit{
	"":              {Dim_None, 1, 0},
	"unitless":      {Dim_None, 1, 0},
	"dimensionless": {Dim_None, 1, 0},
	"m":             {Dim_Length, 1, 0},
	"cm":            {Dim_Length, 1.e-2, 0},
	"mm":            {Dim_Length, 1.e-3, 0},
	"in":            {Dim_Length, 0.0254, 0},
	"inch":          {Dim_Length, 0.0254, 0},
	"ft":            {Dim_Length, 0.3048, 0},
	"w":             {Dim_Power, 1, 0},
	"watt":          {Dim_Power, 1, 0},
	"watts":         {Dim_Power, 1, 0},
	"kw":            {Dim_Power, 1.e3, 0},
	"m3/s":          {Dim_VolumetricFlow, 1, 0},
	"m^3/s":         {Dim_VolumetricFlow, 1, 0},
	"l/s":           {Dim_VolumetricFlow, 1.e-3, 0},
	"l/min":         {Dim_VolumetricFlow, 1.e-3 / 60, 0},
	"ml/s":          {Dim_VolumetricFlow, 1.e-6, 0},
	"ml/min":        {Dim_VolumetricFlow, 1.e-6 / 60, 0},
	"cc/min":        {Dim_VolumetricFlow, 1.e-6 / 60, 0},
	"k":             {Dim_Temperature, 1, 0},
	"kelvin":        {Dim_Temperature, 1, 0},
	"degc":          {Dim_Temperature, 1, 273.15},
	"c":             {Dim_Temperature, 1, 273.15},
	"degf":          {Dim_Temperature, 5. / 9, 459.67},
	"f":             {Dim_Temperature, 5. / 9, 459.67},
	"r":             {Dim_Temperature, 5. / 9, 0},
	"pa":            {Dim_Pressure, 1, 0},
	"kpa":           {Dim_Pressure, 1.e3, 0},
	"mpa":           {Dim_Pressure, 1.e6, 0},
	"bar":           {Dim_Pressure, 1.e5, 0},
	"atm":           {Dim_Pressure, 101325, 0},
	"psi":           {Dim_Pressure, 6894.757293168, 0},
	"torr":          {Dim_Pressure, 101325. / 760, 0},
}

// ToSI converts v in units to SI, checking that units measure dim
func ToSI(v float64, units string, dim Dimension) (si float64, err error) {
	u, ok := unitTable[strings.ToLower(strings.TrimSpace(units))]
	if !ok {
		return 0, fmt.Errorf("unknown units %q", units)
	}
	if u.dim != dim {
		return 0, fmt.Errorf("units %q measure %s, need %s", units, u.dim, dim)
	}
	return u.scale * (v + u.offset), nil
}
