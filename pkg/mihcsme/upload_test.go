package mihcsme

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lacdr/mihcsme-go/pkg/mihcsme/models"
	"github.com/lacdr/mihcsme-go/pkg/mihcsme/omero"
	"github.com/lacdr/mihcsme-go/pkg/mihcsme/well"
)

// fakeService is an in-memory AnnotationService backed by maps.
type fakeService struct {
	plates map[int64][]omero.Plate
	wells  map[int64][]omero.Well
	anns   map[string][]omero.MapAnnotation
	nextID int64
}

func newFakeService() *fakeService {
	return &fakeService{
		plates: make(map[int64][]omero.Plate),
		wells:  make(map[int64][]omero.Well),
		anns:   make(map[string][]omero.MapAnnotation),
	}
}

func objKey(objType string, objID int64) string {
	return fmt.Sprintf("%s/%d", objType, objID)
}

func (s *fakeService) CreateMapAnnotation(_ context.Context, objType string, objID int64, kv map[string]string, namespace string) (int64, error) {
	s.nextID++
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var values [][2]string
	for _, k := range keys {
		values = append(values, [2]string{k, kv[k]})
	}
	key := objKey(objType, objID)
	s.anns[key] = append(s.anns[key], omero.MapAnnotation{ID: s.nextID, Namespace: namespace, Values: values})
	return s.nextID, nil
}

func (s *fakeService) ListMapAnnotations(_ context.Context, objType string, objID int64, nsPrefix string) ([]omero.MapAnnotation, error) {
	var result []omero.MapAnnotation
	for _, ann := range s.anns[objKey(objType, objID)] {
		if strings.HasPrefix(ann.Namespace, nsPrefix) {
			result = append(result, ann)
		}
	}
	return result, nil
}

func (s *fakeService) DeleteMapAnnotations(_ context.Context, objType string, objID int64, nsPrefix string) (int, error) {
	key := objKey(objType, objID)
	var kept []omero.MapAnnotation
	deleted := 0
	for _, ann := range s.anns[key] {
		if !strings.HasPrefix(ann.Namespace, nsPrefix) {
			kept = append(kept, ann)
			continue
		}
		deleted++
	}
	s.anns[key] = kept
	return deleted, nil
}

func (s *fakeService) ListPlates(_ context.Context, screenID int64) ([]omero.Plate, error) {
	return s.plates[screenID], nil
}

func (s *fakeService) ListWells(_ context.Context, plateID int64) ([]omero.Well, error) {
	return s.wells[plateID], nil
}

// fixtureService returns a fake with one screen (ID 1) holding one 96-well
// plate "Plate1" (ID 10).
func fixtureService() *fakeService {
	s := newFakeService()
	s.plates[1] = []omero.Plate{{ID: 10, Name: "Plate1"}}
	var wells []omero.Well
	id := int64(100)
	for row := 0; row < 8; row++ {
		for col := 0; col < 12; col++ {
			wells = append(wells, omero.Well{ID: id, Coord: well.Coordinate{Row: row, Col: col}})
			id++
		}
	}
	s.wells[10] = wells
	return s
}

func testMetadata() *models.Metadata {
	return &models.Metadata{
		InvestigationInformation: &models.InvestigationInformation{
			Groups: models.Groups{
				"Investigation": {"Investigation Identifier": "INV-001"},
			},
		},
		StudyInformation: &models.StudyInformation{
			Groups: models.Groups{
				"Study": {"Study Identifier": "STD-001", "Study Title": "Example"},
			},
		},
		AssayConditions: []models.AssayCondition{
			{Plate: "Plate1", Well: "A01", Conditions: map[string]string{"Compound": "DMSO"}},
			{Plate: "Plate1", Well: "h12", Conditions: map[string]string{"Compound": "Staurosporine"}},
		},
		ReferenceSheets: []models.ReferenceSheet{
			{Name: "_Organisms", Data: map[string]string{"Human": "Homo sapiens"}},
		},
	}
}

func TestUpload(t *testing.T) {
	svc := fixtureService()
	uploader := NewUploader(svc, DefaultOptions(), zap.NewNop())

	report, err := uploader.Upload(context.Background(), testMetadata(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, report.RunID)

	// Investigation + Study + reference + run summary on the screen.
	require.Equal(t, 4, report.ScreenAnnotations)
	require.Equal(t, 2, report.WellAnnotations)
	require.Zero(t, report.Deleted)

	screenAnns, err := svc.ListMapAnnotations(context.Background(), omero.TypeScreen, 1, "")
	require.NoError(t, err)

	byNS := make(map[string]omero.MapAnnotation)
	for _, ann := range screenAnns {
		byNS[ann.Namespace] = ann
	}
	require.Contains(t, byNS, "MIHCSME/InvestigationInformation/Investigation")
	require.Contains(t, byNS, "MIHCSME/StudyInformation/Study")
	require.Contains(t, byNS, "MIHCSME/Reference/_Organisms")
	require.Equal(t, "STD-001", byNS["MIHCSME/StudyInformation/Study"].ValueMap()["Study Identifier"])

	summary := byNS["MIHCSME/Upload"]
	require.Equal(t, report.RunID, summary.ValueMap()["Upload ID"])

	// A01 -> well 100, H12 -> well 195 (normalized from "h12").
	a01, err := svc.ListMapAnnotations(context.Background(), omero.TypeWell, 100, "")
	require.NoError(t, err)
	require.Len(t, a01, 1)
	require.Equal(t, "MIHCSME/AssayConditions", a01[0].Namespace)
	require.Equal(t, map[string]string{
		"Plate": "Plate1", "Well": "A01", "Compound": "DMSO",
	}, a01[0].ValueMap())

	h12, err := svc.ListMapAnnotations(context.Background(), omero.TypeWell, 195, "")
	require.NoError(t, err)
	require.Len(t, h12, 1)
	require.Equal(t, "H12", h12[0].ValueMap()["Well"])
}

func TestUploadReplace(t *testing.T) {
	svc := fixtureService()
	ctx := context.Background()

	opts := DefaultOptions()
	first := NewUploader(svc, opts, nil)
	_, err := first.Upload(ctx, testMetadata(), 1)
	require.NoError(t, err)

	opts.Replace = true
	second := NewUploader(svc, opts, nil)
	report, err := second.Upload(ctx, testMetadata(), 1)
	require.NoError(t, err)
	require.Equal(t, 6, report.Deleted) // 4 screen + 2 well annotations

	screenAnns, err := svc.ListMapAnnotations(ctx, omero.TypeScreen, 1, "MIHCSME")
	require.NoError(t, err)
	require.Len(t, screenAnns, 4)

	a01, err := svc.ListMapAnnotations(ctx, omero.TypeWell, 100, "")
	require.NoError(t, err)
	require.Len(t, a01, 1)
}

func TestUploadWithoutReplaceAccumulates(t *testing.T) {
	svc := fixtureService()
	ctx := context.Background()
	uploader := NewUploader(svc, DefaultOptions(), nil)

	_, err := uploader.Upload(ctx, testMetadata(), 1)
	require.NoError(t, err)
	_, err = uploader.Upload(ctx, testMetadata(), 1)
	require.NoError(t, err)

	a01, err := svc.ListMapAnnotations(ctx, omero.TypeWell, 100, "")
	require.NoError(t, err)
	require.Len(t, a01, 2)
}

func TestUploadDryRun(t *testing.T) {
	svc := fixtureService()
	opts := DefaultOptions()
	opts.DryRun = true
	uploader := NewUploader(svc, opts, nil)

	_, err := uploader.Upload(context.Background(), testMetadata(), 1)
	require.NoError(t, err)
	require.Empty(t, svc.anns)
}

func TestUploadUnknownPlate(t *testing.T) {
	svc := fixtureService()
	md := testMetadata()
	md.AssayConditions[0].Plate = "PlateX"

	uploader := NewUploader(svc, DefaultOptions(), nil)
	_, err := uploader.Upload(context.Background(), md, 1)
	require.ErrorIs(t, err, ErrPlateNotFound)
}

func TestUploadUnknownWell(t *testing.T) {
	svc := fixtureService()
	md := testMetadata()
	// P24 is a valid label but outside the 96-well fixture plate.
	md.AssayConditions[0].Well = "P24"

	uploader := NewUploader(svc, DefaultOptions(), nil)
	_, err := uploader.Upload(context.Background(), md, 1)
	require.ErrorIs(t, err, ErrWellNotFound)
}

func TestDownloadRoundTrip(t *testing.T) {
	svc := fixtureService()
	ctx := context.Background()
	md := testMetadata()

	uploader := NewUploader(svc, DefaultOptions(), nil)
	_, err := uploader.Upload(ctx, md, 1)
	require.NoError(t, err)

	got, err := Download(ctx, svc, 1, DefaultOptions(), zap.NewNop())
	require.NoError(t, err)

	require.Equal(t, md.InvestigationInformation, got.InvestigationInformation)
	require.Equal(t, md.StudyInformation, got.StudyInformation)
	require.Nil(t, got.AssayInformation)
	require.Equal(t, md.ReferenceSheets, got.ReferenceSheets)

	// Upload normalized "h12" to "H12"; download labels come from the
	// server-side coordinates, so they match the canonical form.
	require.ElementsMatch(t, []models.AssayCondition{
		{Plate: "Plate1", Well: "A01", Conditions: map[string]string{"Compound": "DMSO"}},
		{Plate: "Plate1", Well: "H12", Conditions: map[string]string{"Compound": "Staurosporine"}},
	}, got.AssayConditions)
}
