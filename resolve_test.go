package idml

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/tdewolff/idml/document"
	"github.com/tdewolff/test"
)

func buildPackage(t *testing.T, files map[string]string) *document.Package {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		test.Error(t, err)
		_, err = w.Write([]byte(content))
		test.Error(t, err)
	}
	test.Error(t, zw.Close())

	pkg, err := document.Read(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	test.Error(t, err)
	return pkg
}

// recorder collects rendered records per page.
type recorder struct {
	pages []pageRecord
}

type pageRecord struct {
	width, height float64
	elems         []*Resolved
}

func (r *recorder) StartPage(width, height float64) error {
	r.pages = append(r.pages, pageRecord{width: width, height: height})
	return nil
}

func (r *recorder) Element(elem *Resolved) error {
	page := &r.pages[len(r.pages)-1]
	page.elems = append(page.elems, elem)
	return nil
}

func (r *recorder) EndPage() error {
	return nil
}

func rectangleGeometry(w, h string) string {
	return `<Properties><PathGeometry><GeometryPathType PathOpen="false"><PathPointArray>
	  <PathPointType Anchor="0 0" LeftDirection="0 0" RightDirection="0 0"/>
	  <PathPointType Anchor="` + w + ` 0" LeftDirection="` + w + ` 0" RightDirection="` + w + ` 0"/>
	  <PathPointType Anchor="` + w + ` ` + h + `" LeftDirection="` + w + ` ` + h + `" RightDirection="` + w + ` ` + h + `"/>
	  <PathPointType Anchor="0 ` + h + `" LeftDirection="0 ` + h + `" RightDirection="0 ` + h + `"/>
	</PathPointArray></GeometryPathType></PathGeometry></Properties>`
}

func testFiles() map[string]string {
	return map[string]string{
		"designmap.xml": `<Document Self="d">
		  <idPkg:Graphic src="Resources/Graphic.xml"/>
		  <idPkg:Styles src="Resources/Styles.xml"/>
		  <idPkg:Spread src="Spreads/Spread_s1.xml"/>
		  <idPkg:Story src="Stories/Story_u10.xml"/>
		</Document>`,
		"Resources/Graphic.xml": `<idPkg:Graphic>
		  <Color Self="Color/red" Space="CMYK" ColorValue="0 100 100 0"/>
		  <Color Self="Color/k" Space="CMYK" ColorValue="0 0 0 100"/>
		  <Gradient Self="Gradient/g" Type="Linear">
		    <GradientStop StopColor="Color/red" Location="0"/>
		    <GradientStop StopColor="Color/k" Location="100"/>
		  </Gradient>
		</idPkg:Graphic>`,
		"Resources/Styles.xml": `<idPkg:Styles><RootCharacterStyleGroup/></idPkg:Styles>`,
		"Spreads/Spread_s1.xml": `<idPkg:Spread><Spread Self="s1">
		  <Page Self="p1" ItemTransform="1 0 0 1 0 0" GeometricBounds="0 0 150 200"/>
		  <Rectangle Self="rect" ItemTransform="1 0 0 1 10 20" FillColor="Color/red" StrokeColor="Color/k" StrokeWeight="2" StrokeAlignment="InsideAlignment">
		    <TransparencySetting><BlendingSetting Opacity="50"/></TransparencySetting>
		    ` + rectangleGeometry("30", "40") + `
		  </Rectangle>
		  <Group Self="grp" ItemTransform="1 0 0 1 50 0">
		    <Oval Self="oval" ItemTransform="1 0 0 1 5 5" FillColor="Gradient/g" GradientFillAngle="90">
		      ` + rectangleGeometry("10", "10") + `
		    </Oval>
		  </Group>
		  <TextFrame Self="tf2" ParentStory="u10" PreviousTextFrame="tf1" NextTextFrame="n" ItemTransform="1 0 0 1 100 100">
		    ` + rectangleGeometry("80", "20") + `
		  </TextFrame>
		  <TextFrame Self="tf1" ParentStory="u10" PreviousTextFrame="n" NextTextFrame="tf2" ItemTransform="1 0 0 1 100 60">
		    ` + rectangleGeometry("80", "20") + `
		  </TextFrame>
		</Spread></idPkg:Spread>`,
		"Stories/Story_u10.xml": `<idPkg:Story><Story Self="u10">
		  <ParagraphStyleRange>
		    <CharacterStyleRange PointSize="10" FillColor="Color/k"><Content>Hello</Content><Br/><Content>World</Content></CharacterStyleRange>
		  </ParagraphStyleRange>
		</Story></idPkg:Story>`,
	}
}

func TestResolveDocument(t *testing.T) {
	doc := Resolve(buildPackage(t, testFiles()))
	r := &recorder{}
	test.Error(t, doc.Render(r))
	test.T(t, len(doc.Diags), 0)

	test.T(t, len(r.pages), 1)
	test.Float(t, r.pages[0].width, 200.0)
	test.Float(t, r.pages[0].height, 150.0)
	test.T(t, len(r.pages[0].elems), 4)

	byID := map[string]*Resolved{}
	for _, elem := range r.pages[0].elems {
		byID[elem.ID] = elem
	}

	rect := byID["rect"]
	test.That(t, rect != nil)
	test.Float(t, rect.Placement.X, 10.0)
	test.Float(t, rect.Placement.Y, 20.0)
	test.Float(t, rect.Placement.Width, 30.0)
	test.Float(t, rect.Placement.Height, 40.0)
	test.Float(t, rect.Placement.Rotation, 0.0)
	test.T(t, rect.Fill.Color, RGBA{1.0, 0.0, 0.0, 1.0})
	test.T(t, rect.Stroke.Color, Black)
	test.Float(t, rect.StrokeWidth, 2.0)
	test.T(t, rect.StrokeAlignment, "inside")
	test.Float(t, rect.Opacity, 0.5)

	// the group's translation composes with the oval's own transform
	oval := byID["oval"]
	test.That(t, oval != nil)
	test.Float(t, oval.Placement.X, 55.0)
	test.Float(t, oval.Placement.Y, 5.0)
	test.That(t, oval.Fill.Gradient != nil)
	test.Float(t, oval.Fill.Angle, 90.0)
	test.T(t, len(oval.Fill.Gradient.Stops), 2)
}

func TestResolveTextFlow(t *testing.T) {
	doc := Resolve(buildPackage(t, testFiles()))
	r := &recorder{}
	test.Error(t, doc.Render(r))

	byID := map[string]*Resolved{}
	for _, elem := range r.pages[0].elems {
		byID[elem.ID] = elem
	}

	// the story splits after the line break, each frame carries only its own range re-based to 0
	tf1, tf2 := byID["tf1"], byID["tf2"]
	test.T(t, tf1.Text, "Hello\n")
	test.T(t, tf2.Text, "World")
	test.T(t, tf1.Text+tf2.Text, "Hello\nWorld")

	test.T(t, len(tf1.Runs), 1)
	test.T(t, tf1.Runs[0].Start, 0)
	test.T(t, tf1.Runs[0].End, 6)
	test.Float(t, tf1.Runs[0].Size, 10.0)

	test.T(t, len(tf2.Runs), 1)
	test.T(t, tf2.Runs[0].Start, 0)
	test.T(t, tf2.Runs[0].End, 5)
}

func TestResolveDiagnostics(t *testing.T) {
	files := testFiles()
	files["Spreads/Spread_s1.xml"] = `<idPkg:Spread><Spread Self="s1">
	  <Page Self="p1" ItemTransform="1 0 0 1 0 0" GeometricBounds="0 0 150 200"/>
	  <Rectangle Self="nogeo" ItemTransform="1 0 0 1 0 0" FillColor="Color/red"><Properties/></Rectangle>
	  <Rectangle Self="badfill" ItemTransform="1 0 0 1 10 10" FillColor="Color/missing">
	    ` + rectangleGeometry("10", "10") + `
	  </Rectangle>
	</Spread></idPkg:Spread>`

	doc := Resolve(buildPackage(t, files))
	r := &recorder{}
	test.Error(t, doc.Render(r))

	// the element without geometry fails alone, its sibling still resolves with a substitute fill
	test.T(t, len(r.pages[0].elems), 1)
	test.T(t, r.pages[0].elems[0].ID, "badfill")
	test.T(t, r.pages[0].elems[0].Fill.Color, Black)

	test.That(t, doc.Diags.Fatal())
	levels := map[Level]int{}
	for _, diag := range doc.Diags {
		levels[diag.Level]++
	}
	test.T(t, levels[Data], 1)
	test.T(t, levels[Warning], 1)
}

func TestResolveNoPages(t *testing.T) {
	files := testFiles()
	files["Spreads/Spread_s1.xml"] = `<idPkg:Spread><Spread Self="s1">
	  <Rectangle Self="rect" ItemTransform="1 0 0 1 0 0">` + rectangleGeometry("10", "10") + `</Rectangle>
	</Spread></idPkg:Spread>`

	doc := Resolve(buildPackage(t, files))
	r := &recorder{}
	test.Error(t, doc.Render(r))
	test.T(t, len(r.pages), 0)
	test.That(t, doc.Diags.Fatal())
}
