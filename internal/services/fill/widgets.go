package fill

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// widgetKind classifies a native AcroForm field by its fill mechanism.
type widgetKind string

const (
	widgetText      widgetKind = "text"
	widgetCheckbox  widgetKind = "checkbox"
	widgetRadio     widgetKind = "radio"
	widgetChoice    widgetKind = "choice"
	widgetSignature widgetKind = "signature"
)

// nativeWidget is an interactive form control found in the document's
// AcroForm dictionary, addressable by name.
type nativeWidget struct {
	Name string
	Kind widgetKind
}

// locateWidgets walks the AcroForm Fields array and indexes every named
// widget by its partial field name (the T entry). A document without an
// AcroForm yields an empty map, not an error; only an unreadable document
// errors.
func locateWidgets(document []byte) (map[string]nativeWidget, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(document), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	widgets := make(map[string]nativeWidget)

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return widgets, nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil || acroFormDict == nil {
		return widgets, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return widgets, nil
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return widgets, nil
	}

	for _, fieldRef := range fieldsArray {
		fieldDict, err := ctx.DereferenceDict(fieldRef)
		if err != nil || fieldDict == nil {
			continue
		}

		name := widgetName(ctx, fieldDict)
		if name == "" {
			continue
		}

		widgets[name] = nativeWidget{
			Name: name,
			Kind: classifyWidget(ctx, fieldDict),
		}
	}

	return widgets, nil
}

// widgetName reads the partial field name (T entry).
func widgetName(ctx *model.Context, fieldDict types.Dict) string {
	nameObj, found := fieldDict.Find("T")
	if !found {
		return ""
	}
	name, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil)
	if err != nil {
		return ""
	}
	return name
}

// classifyWidget maps the FT entry (with the Ff flag bits for buttons) to a
// widgetKind. FT may be inherited from a parent field.
func classifyWidget(ctx *model.Context, fieldDict types.Dict) widgetKind {
	ftObj, found := fieldDict.Find("FT")
	if !found {
		if parentObj, found := fieldDict.Find("Parent"); found {
			if parentDict, err := ctx.DereferenceDict(parentObj); err == nil && parentDict != nil {
				return classifyWidget(ctx, parentDict)
			}
		}
		return widgetText
	}

	ftName, err := ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return widgetText
	}

	switch ftName {
	case "Btn":
		if flagsObj, found := fieldDict.Find("Ff"); found {
			if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
				if (*flags & (1 << 15)) != 0 { // bit 16: radio
					return widgetRadio
				}
				if (*flags & (1 << 16)) != 0 { // bit 17: pushbutton
					return widgetText
				}
			}
		}
		return widgetCheckbox
	case "Ch":
		return widgetChoice
	case "Sig":
		return widgetSignature
	default:
		return widgetText
	}
}
