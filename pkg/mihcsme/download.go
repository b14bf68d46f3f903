package mihcsme

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/lacdr/mihcsme-go/pkg/mihcsme/models"
	"github.com/lacdr/mihcsme-go/pkg/mihcsme/omero"
)

// Download reads the MIHCSME annotations of a screen back into a Metadata
// model: screen-level annotations under <base>/<Sheet>/<Group> rebuild the
// information sheets, <base>/Reference/<Name> the reference sheets, and
// per-well annotations under <base>/AssayConditions the condition table.
// Well labels are derived from the server-side well coordinates, not from
// the stored pairs, so they are always canonical.
func Download(ctx context.Context, svc AnnotationService, screenID int64, opts Options, log *zap.Logger) (*models.Metadata, error) {
	if log == nil {
		log = zap.NewNop()
	}
	base := opts.namespaceBase()

	md := &models.Metadata{}

	annotations, err := svc.ListMapAnnotations(ctx, omero.TypeScreen, screenID, base+"/")
	if err != nil {
		return nil, err
	}
	for _, ann := range annotations {
		parts := strings.Split(strings.TrimPrefix(ann.Namespace, base+"/"), "/")
		switch {
		case len(parts) == 2 && parts[0] == models.SheetInvestigation:
			if md.InvestigationInformation == nil {
				md.InvestigationInformation = &models.InvestigationInformation{Groups: models.Groups{}}
			}
			md.InvestigationInformation.Groups[parts[1]] = ann.ValueMap()
		case len(parts) == 2 && parts[0] == models.SheetStudy:
			if md.StudyInformation == nil {
				md.StudyInformation = &models.StudyInformation{Groups: models.Groups{}}
			}
			md.StudyInformation.Groups[parts[1]] = ann.ValueMap()
		case len(parts) == 2 && parts[0] == models.SheetAssay:
			if md.AssayInformation == nil {
				md.AssayInformation = &models.AssayInformation{Groups: models.Groups{}}
			}
			md.AssayInformation.Groups[parts[1]] = ann.ValueMap()
		case len(parts) == 2 && parts[0] == nsReference:
			md.ReferenceSheets = append(md.ReferenceSheets, models.ReferenceSheet{
				Name: parts[1],
				Data: ann.ValueMap(),
			})
		case len(parts) == 1 && parts[0] == nsUpload:
			// Run summaries are bookkeeping, not metadata.
		default:
			log.Warn("Skipping annotation with unrecognized namespace",
				zap.String("ns", ann.Namespace), zap.Int64("annotation", ann.ID))
		}
	}

	conditions, err := downloadConditions(ctx, svc, screenID, base)
	if err != nil {
		return nil, err
	}
	md.AssayConditions = conditions

	log.Info("Downloaded metadata",
		zap.Int64("screen", screenID),
		zap.Int("screen_annotations", len(annotations)),
		zap.Int("conditions", len(conditions)))
	return md, nil
}

func downloadConditions(ctx context.Context, svc AnnotationService, screenID int64, base string) ([]models.AssayCondition, error) {
	plates, err := svc.ListPlates(ctx, screenID)
	if err != nil {
		return nil, err
	}

	ns := base + "/" + nsConditions
	var conditions []models.AssayCondition
	for _, plate := range plates {
		wells, err := svc.ListWells(ctx, plate.ID)
		if err != nil {
			return nil, err
		}
		for _, w := range wells {
			annotations, err := svc.ListMapAnnotations(ctx, omero.TypeWell, w.ID, ns)
			if err != nil {
				return nil, err
			}
			if len(annotations) == 0 {
				continue
			}

			label, err := w.Label()
			if err != nil {
				return nil, err
			}
			for _, ann := range annotations {
				values := ann.ValueMap()
				delete(values, "Plate")
				delete(values, "Well")
				conditions = append(conditions, models.AssayCondition{
					Plate:      plate.Name,
					Well:       label,
					Conditions: values,
				})
			}
		}
	}
	return conditions, nil
}
