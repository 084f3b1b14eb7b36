package loader

import (
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-collada/engine/model"
)

// colladaAssetExtractorImpl is the implementation of the colladaAssetExtractor interface.
type colladaAssetExtractorImpl struct {
	document *colladaDocument
}

// colladaAssetExtractor defines the interface for decoding the document asset block into Metadata.
type colladaAssetExtractor interface {
	// ExtractMetadata decodes the asset block that is a direct child of the document element.
	// Asset blocks nested inside libraries or nodes are ignored. A document without a
	// root asset block yields DefaultMetadata.
	//
	// Returns:
	//   - model.Metadata: the decoded metadata
	ExtractMetadata() model.Metadata
}

var _ colladaAssetExtractor = &colladaAssetExtractorImpl{}

// newColladaAssetExtractor creates a new asset extractor for a parsed document.
//
// Parameters:
//   - document: the parsed document
//
// Returns:
//   - colladaAssetExtractor: the asset extractor
func newColladaAssetExtractor(document *colladaDocument) colladaAssetExtractor {
	return &colladaAssetExtractorImpl{document: document}
}

func (e *colladaAssetExtractorImpl) ExtractMetadata() model.Metadata {
	meta := model.DefaultMetadata()
	if e.document == nil || e.document.Root() == nil {
		return meta
	}

	asset := e.document.Root().Child(tagAsset)
	if asset == nil {
		return meta
	}

	for _, child := range asset.Children() {
		switch child.Tag() {
		case "contributor":
			meta.Contributors = append(meta.Contributors, model.Contributor{
				Author:        child.ChildText("author"),
				AuthoringTool: child.ChildText("authoring_tool"),
				Comments:      child.ChildText("comments"),
				Copyright:     child.ChildText("copyright"),
				SourceData:    child.ChildText("source_data"),
			})
		case "created":
			meta.Created = child.Text()
		case "modified":
			meta.Modified = child.Text()
		case "title":
			meta.Title = child.Text()
		case "subject":
			meta.Subject = child.Text()
		case "keywords":
			meta.Keywords = child.Text()
		case "revision":
			meta.Revision = child.Text()
		case "unit":
			if name := child.Attr(attrName); name != "" {
				meta.Unit.Name = name
			}
			if meter, err := strconv.ParseFloat(strings.TrimSpace(child.Attr("meter")), 64); err == nil && meter > 0 {
				meta.Unit.Meter = meter
			}
		case "up_axis":
			switch axis := strings.ToUpper(child.Text()); axis {
			case model.UpAxisX, model.UpAxisY, model.UpAxisZ:
				meta.UpAxis = axis
			}
		}
	}

	return meta
}
