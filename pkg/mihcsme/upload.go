package mihcsme

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lacdr/mihcsme-go/pkg/mihcsme/models"
	"github.com/lacdr/mihcsme-go/pkg/mihcsme/omero"
	"github.com/lacdr/mihcsme-go/pkg/mihcsme/well"
)

// AnnotationService is the slice of the OMERO client used for metadata
// synchronization. *omero.Client implements it.
type AnnotationService interface {
	CreateMapAnnotation(ctx context.Context, objType string, objID int64, kv map[string]string, namespace string) (int64, error)
	ListMapAnnotations(ctx context.Context, objType string, objID int64, nsPrefix string) ([]omero.MapAnnotation, error)
	DeleteMapAnnotations(ctx context.Context, objType string, objID int64, nsPrefix string) (int, error)
	ListPlates(ctx context.Context, screenID int64) ([]omero.Plate, error)
	ListWells(ctx context.Context, plateID int64) ([]omero.Well, error)
}

// Namespace segments appended to the base namespace.
const (
	nsConditions = "AssayConditions"
	nsReference  = "Reference"
	nsUpload     = "Upload"
)

// Uploader writes MIHCSME metadata to a screen as map annotations.
type Uploader struct {
	svc  AnnotationService
	opts Options
	log  *zap.Logger
}

// NewUploader creates an Uploader. A nil logger disables logging.
func NewUploader(svc AnnotationService, opts Options, log *zap.Logger) *Uploader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Uploader{svc: svc, opts: opts, log: log}
}

// UploadReport summarizes one upload run.
type UploadReport struct {
	// RunID identifies the run; it is also recorded in the run summary
	// annotation on the screen.
	RunID             string
	ScreenAnnotations int
	WellAnnotations   int
	Deleted           int
}

// Upload writes the metadata to the screen. Information sheets become
// screen-level annotations (one per annotation group), reference sheets
// become screen-level annotations under the Reference namespace, and each
// assay condition becomes an annotation on its well. Well labels are
// resolved to server-side wells via their zero-based plate coordinates.
//
// With Options.Replace, existing annotations under the namespace are
// removed first; otherwise repeated uploads accumulate duplicates.
func (u *Uploader) Upload(ctx context.Context, md *models.Metadata, screenID int64) (*UploadReport, error) {
	if err := md.Validate(); err != nil {
		return nil, err
	}

	report := &UploadReport{RunID: uuid.NewString()}
	base := u.opts.namespaceBase()
	u.log.Info("Starting metadata upload",
		zap.String("run", report.RunID),
		zap.Int64("screen", screenID),
		zap.String("namespace", base),
		zap.Bool("replace", u.opts.Replace),
		zap.Bool("dry_run", u.opts.DryRun))

	if u.opts.Replace && !u.opts.DryRun {
		n, err := u.svc.DeleteMapAnnotations(ctx, omero.TypeScreen, screenID, base)
		if err != nil {
			return nil, err
		}
		report.Deleted += n
	}

	if err := u.uploadInformation(ctx, md, screenID, report); err != nil {
		return nil, err
	}
	if err := u.uploadReferences(ctx, md, screenID, report); err != nil {
		return nil, err
	}
	if err := u.uploadConditions(ctx, md, screenID, report); err != nil {
		return nil, err
	}

	if !u.opts.DryRun {
		summary := map[string]string{
			"Upload ID":   report.RunID,
			"Upload Date": time.Now().UTC().Format(time.RFC3339),
		}
		if _, err := u.svc.CreateMapAnnotation(ctx, omero.TypeScreen, screenID, summary, base+"/"+nsUpload); err != nil {
			return nil, err
		}
		report.ScreenAnnotations++
	}

	u.log.Info("Metadata upload finished",
		zap.String("run", report.RunID),
		zap.Int("screen_annotations", report.ScreenAnnotations),
		zap.Int("well_annotations", report.WellAnnotations),
		zap.Int("deleted", report.Deleted))
	return report, nil
}

// uploadInformation writes the three information sheets, one annotation
// per group, under <base>/<Sheet>/<Group>.
func (u *Uploader) uploadInformation(ctx context.Context, md *models.Metadata, screenID int64, report *UploadReport) error {
	sheets := []struct {
		name   string
		groups models.Groups
	}{
		{models.SheetInvestigation, groupsOrNil(md.InvestigationInformation)},
		{models.SheetStudy, studyGroupsOrNil(md.StudyInformation)},
		{models.SheetAssay, assayGroupsOrNil(md.AssayInformation)},
	}

	base := u.opts.namespaceBase()
	for _, sheet := range sheets {
		for _, group := range sortedKeys(sheet.groups) {
			kv := sheet.groups[group]
			if len(kv) == 0 {
				continue
			}
			ns := fmt.Sprintf("%s/%s/%s", base, sheet.name, group)
			if u.opts.DryRun {
				u.log.Info("Would annotate screen", zap.String("ns", ns), zap.Int("pairs", len(kv)))
				continue
			}
			if _, err := u.svc.CreateMapAnnotation(ctx, omero.TypeScreen, screenID, kv, ns); err != nil {
				return err
			}
			report.ScreenAnnotations++
		}
	}
	return nil
}

func (u *Uploader) uploadReferences(ctx context.Context, md *models.Metadata, screenID int64, report *UploadReport) error {
	base := u.opts.namespaceBase()
	for _, ref := range md.ReferenceSheets {
		if len(ref.Data) == 0 {
			continue
		}
		ns := fmt.Sprintf("%s/%s/%s", base, nsReference, ref.Name)
		if u.opts.DryRun {
			u.log.Info("Would annotate screen", zap.String("ns", ns), zap.Int("pairs", len(ref.Data)))
			continue
		}
		if _, err := u.svc.CreateMapAnnotation(ctx, omero.TypeScreen, screenID, ref.Data, ns); err != nil {
			return err
		}
		report.ScreenAnnotations++
	}
	return nil
}

// uploadConditions writes one annotation per assay condition onto the
// matching well, located by plate name and well coordinate.
func (u *Uploader) uploadConditions(ctx context.Context, md *models.Metadata, screenID int64, report *UploadReport) error {
	if len(md.AssayConditions) == 0 {
		return nil
	}

	plates, err := u.svc.ListPlates(ctx, screenID)
	if err != nil {
		return err
	}
	plateIDs := make(map[string]int64, len(plates))
	for _, p := range plates {
		plateIDs[p.Name] = p.ID
	}

	// Well lookup per plate, fetched lazily.
	wellIndex := make(map[int64]map[well.Coordinate]int64)
	base := u.opts.namespaceBase()
	ns := base + "/" + nsConditions

	for _, condition := range md.AssayConditions {
		plateID, ok := plateIDs[condition.Plate]
		if !ok {
			return fmt.Errorf("%w: %q", ErrPlateNotFound, condition.Plate)
		}

		wells, ok := wellIndex[plateID]
		if !ok {
			listed, err := u.svc.ListWells(ctx, plateID)
			if err != nil {
				return err
			}
			wells = make(map[well.Coordinate]int64, len(listed))
			for _, w := range listed {
				wells[w.Coord] = w.ID
			}
			wellIndex[plateID] = wells
		}

		coord, err := condition.Coordinate()
		if err != nil {
			return err
		}
		wellID, ok := wells[coord]
		if !ok {
			return fmt.Errorf("%w: %s %s", ErrWellNotFound, condition.Plate, condition.Well)
		}

		kv := make(map[string]string, len(condition.Conditions)+2)
		for k, v := range condition.Conditions {
			kv[k] = v
		}
		kv["Plate"] = condition.Plate
		kv["Well"] = condition.Well

		if u.opts.DryRun {
			u.log.Info("Would annotate well",
				zap.String("plate", condition.Plate),
				zap.String("well", condition.Well),
				zap.Int64("well_id", wellID))
			continue
		}

		if u.opts.Replace {
			n, err := u.svc.DeleteMapAnnotations(ctx, omero.TypeWell, wellID, ns)
			if err != nil {
				return err
			}
			report.Deleted += n
		}
		if _, err := u.svc.CreateMapAnnotation(ctx, omero.TypeWell, wellID, kv, ns); err != nil {
			return err
		}
		report.WellAnnotations++
	}
	return nil
}

func groupsOrNil(info *models.InvestigationInformation) models.Groups {
	if info == nil {
		return nil
	}
	return info.Groups
}

func studyGroupsOrNil(info *models.StudyInformation) models.Groups {
	if info == nil {
		return nil
	}
	return info.Groups
}

func assayGroupsOrNil(info *models.AssayInformation) models.Groups {
	if info == nil {
		return nil
	}
	return info.Groups
}

func sortedKeys(groups models.Groups) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
