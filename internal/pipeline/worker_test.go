package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/press-dig/broadsheet/internal/align"
	"github.com/press-dig/broadsheet/internal/home"
	"github.com/press-dig/broadsheet/internal/metrics"
	"github.com/press-dig/broadsheet/internal/raster"
	"github.com/press-dig/broadsheet/internal/recognize"
)

const testIssueID = "Davar/1957/01/01_01/19570101_01-METS.xml"

const testMETS = `<?xml version="1.0" encoding="UTF-8"?>
<mets xmlns="http://www.loc.gov/METS/">
  <structMap TYPE="LOGICAL">
    <div ID="DIVL3" TYPE="NEWSPAPER">
      <div TYPE="CONTENT">
        <div ID="MODSMD_ARTICLE1" LABEL="Big News" TYPE="ARTICLE">
          <div TYPE="BODY">
            <div TYPE="BODY_CONTENT">
              <div TYPE="TEXT">
                <fptr>
                  <area BETYPE="IDREF" FILEID="ALTO1" BEGIN="P1_TB0001"/>
                  <area BETYPE="IDREF" FILEID="ALTO1" BEGIN="P1_TB0002"/>
                </fptr>
              </div>
            </div>
          </div>
        </div>
      </div>
    </div>
  </structMap>
</mets>`

const testALTO = `<?xml version="1.0" encoding="UTF-8"?>
<alto xmlns="http://www.loc.gov/standards/alto/ns-v3#">
  <Layout>
    <Page ID="P1" WIDTH="1000" HEIGHT="1400">
      <PrintSpace>
        <TextBlock ID="P1_TB0001" HPOS="10" VPOS="10" WIDTH="100" HEIGHT="50">
          <TextLine><String CONTENT="first"/><String CONTENT="part"/></TextLine>
        </TextBlock>
        <TextBlock ID="P1_TB0002" HPOS="10" VPOS="70" WIDTH="100" HEIGHT="50">
          <TextLine><String CONTENT="second"/></TextLine>
        </TextBlock>
      </PrintSpace>
    </Page>
  </Layout>
</alto>`

func materializeTestIssue(t *testing.T, dir *home.Dir, mets, altoDoc string) {
	t.Helper()
	issueDir := filepath.Join(dir.DataPath(), "Davar/1957/01/01_01")
	if err := os.MkdirAll(filepath.Join(issueDir, AltoDirName), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(issueDir, "19570101_01-METS.xml"), []byte(mets), 0o644); err != nil {
		t.Fatal(err)
	}
	if altoDoc != "" {
		if err := os.WriteFile(filepath.Join(issueDir, AltoDirName, "0001.xml"), []byte(altoDoc), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func writeTestRaster(t *testing.T, dir *home.Dir, w, h int) {
	t.Helper()
	masterDir := filepath.Join(dir.DataPath(), "Davar/1957/01/01_01", raster.MasterDirName)
	if err := os.MkdirAll(masterDir, 0o755); err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(masterDir, "0001.png"), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestWorker(t *testing.T) (*Worker, *home.Dir) {
	t.Helper()
	dir, err := home.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := dir.EnsureExists(); err != nil {
		t.Fatal(err)
	}
	w := NewWorker(dir, recognize.DryRun{}, metrics.NewRecorder(), nil)
	w.DryRun = true
	return w, dir
}

func readResult(t *testing.T, dir *home.Dir) [][]string {
	t.Helper()
	f, err := os.Open(filepath.Join(dir.OutputPath(), "Davar_19570101_01.csv"))
	if err != nil {
		t.Fatalf("result file missing: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestProcessIssue(t *testing.T) {
	ctx := context.Background()

	t.Run("assembles article text from embedded layout text", func(t *testing.T) {
		w, dir := newTestWorker(t)
		materializeTestIssue(t, dir, testMETS, testALTO)

		if err := w.ProcessIssue(ctx, testIssueID); err != nil {
			t.Fatalf("process failed: %v", err)
		}

		rows := readResult(t, dir)
		if len(rows) != 2 {
			t.Fatalf("expected header + 1 article, got %d rows", len(rows))
		}
		if rows[1][0] != "MODSMD_ARTICLE1" || rows[1][1] != "Big News" {
			t.Errorf("unexpected article row: %v", rows[1])
		}
		// Region texts join with a single space, lines within a region
		// with a newline.
		if rows[1][4] != "first part second" {
			t.Errorf("unexpected assembled text: %q", rows[1][4])
		}
	})

	t.Run("recognizes image-only regions through the engine", func(t *testing.T) {
		_, dir := newTestWorker(t)
		engine := &recognize.Mock{RecognizeFunc: func(ctx context.Context, image []byte) ([]string, error) {
			return []string{"rec", "ognized"}, nil
		}}
		w := NewWorker(dir, engine, metrics.NewRecorder(), nil)

		imageOnly := `<?xml version="1.0"?>
<alto xmlns="http://www.loc.gov/standards/alto/ns-v3#">
  <Layout>
    <Page ID="P1" WIDTH="1000" HEIGHT="1400">
      <PrintSpace>
        <TextBlock ID="P1_TB0001" HPOS="100" VPOS="100" WIDTH="400" HEIGHT="200"/>
        <TextBlock ID="P1_TB0002" HPOS="100" VPOS="400" WIDTH="400" HEIGHT="200"/>
      </PrintSpace>
    </Page>
  </Layout>
</alto>`
		materializeTestIssue(t, dir, testMETS, imageOnly)
		writeTestRaster(t, dir, 500, 700)

		if err := w.ProcessIssue(ctx, testIssueID); err != nil {
			t.Fatalf("process failed: %v", err)
		}
		if engine.Calls != 2 {
			t.Errorf("expected 2 engine calls, got %d", engine.Calls)
		}

		rows := readResult(t, dir)
		// Fragments join with newlines, regions with a space.
		if rows[1][4] != "rec\nognized rec\nognized" {
			t.Errorf("unexpected assembled text: %q", rows[1][4])
		}
	})

	t.Run("recognition failure leaves region text empty", func(t *testing.T) {
		_, dir := newTestWorker(t)
		engine := &recognize.Mock{RecognizeFunc: func(ctx context.Context, image []byte) ([]string, error) {
			return nil, errors.New("engine down")
		}}
		w := NewWorker(dir, engine, metrics.NewRecorder(), nil)

		imageOnly := `<?xml version="1.0"?>
<alto xmlns="http://www.loc.gov/standards/alto/ns-v3#">
  <Layout>
    <Page ID="P1" WIDTH="1000" HEIGHT="1400">
      <PrintSpace>
        <TextBlock ID="P1_TB0001" HPOS="100" VPOS="100" WIDTH="400" HEIGHT="200"/>
      </PrintSpace>
    </Page>
  </Layout>
</alto>`
		materializeTestIssue(t, dir, testMETS, imageOnly)
		writeTestRaster(t, dir, 500, 700)

		if err := w.ProcessIssue(ctx, testIssueID); err != nil {
			t.Fatalf("recognition failure must be contained: %v", err)
		}
		rows := readResult(t, dir)
		if rows[1][4] != "" {
			t.Errorf("expected empty text, got %q", rows[1][4])
		}
	})

	t.Run("no regions anywhere fails the issue", func(t *testing.T) {
		w, dir := newTestWorker(t)
		empty := `<?xml version="1.0"?>
<alto xmlns="http://www.loc.gov/standards/alto/ns-v3#">
  <Layout><Page WIDTH="100" HEIGHT="100"><PrintSpace/></Page></Layout>
</alto>`
		materializeTestIssue(t, dir, testMETS, empty)

		err := w.ProcessIssue(ctx, testIssueID)
		if !errors.Is(err, align.ErrNoRegions) {
			t.Errorf("expected ErrNoRegions, got %v", err)
		}
		if _, statErr := os.Stat(filepath.Join(dir.OutputPath(), "Davar_19570101_01.csv")); !os.IsNotExist(statErr) {
			t.Error("failed issue must not produce a result file")
		}
	})

	t.Run("missing structure document fails the issue", func(t *testing.T) {
		w, _ := newTestWorker(t)
		if err := w.ProcessIssue(ctx, testIssueID); err == nil {
			t.Error("expected error for absent issue")
		}
	})

	t.Run("unreadable layout document is contained as a page failure", func(t *testing.T) {
		w, dir := newTestWorker(t)
		materializeTestIssue(t, dir, testMETS, testALTO)
		issueDir := filepath.Join(dir.DataPath(), "Davar/1957/01/01_01")
		if err := os.WriteFile(filepath.Join(issueDir, AltoDirName, "0002.xml"), []byte("not xml <"), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := w.ProcessIssue(ctx, testIssueID); err != nil {
			t.Fatalf("page failure must not fail the issue: %v", err)
		}
	})
}
