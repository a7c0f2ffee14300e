package designspace

import "encoding/xml"

// The xs* types mirror the designspace XML schema. They exist only for
// (un)marshalling; conversion to the document model happens in encode.go and
// decode.go.

type xsDesignspace struct {
	XMLName   xml.Name     `xml:"designspace"`
	Format    string       `xml:"format,attr"`
	Axes      xsAxes       `xml:"axes"`
	Rules     *xsRules     `xml:"rules"`
	Sources   xsSources    `xml:"sources"`
	Instances *xsInstances `xml:"instances"`
}

type xsAxes struct {
	Axes     []xsAxis    `xml:"axis"`
	Mappings *xsMappings `xml:"mappings"`
}

type xsAxis struct {
	Name      string        `xml:"name,attr"`
	Tag       string        `xml:"tag,attr"`
	Minimum   *float64      `xml:"minimum,attr"`
	Default   float64       `xml:"default,attr"`
	Maximum   *float64      `xml:"maximum,attr"`
	Values    string        `xml:"values,attr,omitempty"` // discrete axes, space-separated
	Hidden    string        `xml:"hidden,attr,omitempty"`
	LabelName []xsLabelName `xml:"labelname"`
	Maps      []xsMap       `xml:"map"`
	Labels    *xsLabels     `xml:"labels"`
}

type xsLabelName struct {
	Lang string `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
	Name string `xml:",chardata"`
}

// xsMap is one user-to-design interpolation breakpoint of an axis.
type xsMap struct {
	Input  float64 `xml:"input,attr"`
	Output float64 `xml:"output,attr"`
}

type xsLabels struct {
	Labels []xsLabel `xml:"label"`
}

type xsLabel struct {
	UserValue float64 `xml:"uservalue,attr"`
	Name      string  `xml:"name,attr"`
	Elidable  string  `xml:"elidable,attr,omitempty"`
}

// xsMappings is the avar version 2 table: input locations in user space,
// output locations in design space.
type xsMappings struct {
	Mappings []xsMapping `xml:"mapping"`
}

type xsMapping struct {
	Description string     `xml:"description,attr,omitempty"`
	Input       xsLocation `xml:"input"`
	Output      xsLocation `xml:"output"`
}

type xsLocation struct {
	Dimensions []xsDimension `xml:"dimension"`
}

// xsDimension addresses an axis by its long name, per the designspace
// convention.
type xsDimension struct {
	Name   string  `xml:"name,attr"`
	XValue float64 `xml:"xvalue,attr"`
}

type xsRules struct {
	Rules []xsRule `xml:"rule"`
}

type xsRule struct {
	Name          string           `xml:"name,attr,omitempty"`
	ConditionSets []xsConditionSet `xml:"conditionset"`
	Subs          []xsSub          `xml:"sub"`
}

type xsConditionSet struct {
	Conditions []xsCondition `xml:"condition"`
}

type xsCondition struct {
	Name    string   `xml:"name,attr"`
	Minimum *float64 `xml:"minimum,attr"`
	Maximum *float64 `xml:"maximum,attr"`
}

type xsSub struct {
	Name string `xml:"name,attr"`
	With string `xml:"with,attr"`
}

type xsSources struct {
	Sources []xsSource `xml:"source"`
}

type xsSource struct {
	Filename   string     `xml:"filename,attr"`
	Name       string     `xml:"name,attr,omitempty"`
	FamilyName string     `xml:"familyname,attr,omitempty"`
	Layer      string     `xml:"layer,attr,omitempty"`
	Location   xsLocation `xml:"location"`
	Info       *xsCopy    `xml:"info"`
	Lib        *xsCopy    `xml:"lib"`
}

// xsCopy marks the source whose info/lib is copied into the compiled font,
// which is how the document model's base source is expressed.
type xsCopy struct {
	Copy string `xml:"copy,attr"`
}

type xsInstances struct {
	Instances []xsInstance `xml:"instance"`
}

type xsInstance struct {
	Name           string     `xml:"name,attr,omitempty"`
	FamilyName     string     `xml:"familyname,attr,omitempty"`
	StyleName      string     `xml:"stylename,attr,omitempty"`
	PostScriptName string     `xml:"postscriptfontname,attr,omitempty"`
	Filename       string     `xml:"filename,attr,omitempty"`
	Location       xsLocation `xml:"location"`
}
