package preflight

import (
	"fmt"

	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/reader"
)

// MaxVersion reports documents newer than version
func MaxVersion(version float64) Rule {
	return RuleFunc{
		RuleName: "MaxVersion",
		Fn: func(h *reader.ObjectHash) ([]Issue, error) {
			if v := h.PDFVersion(); v > version {
				return []Issue{{
					Rule:    "MaxVersion",
					Message: fmt.Sprintf("PDF version %g is newer than %g", v, version),
				}}, nil
			}
			return nil, nil
		},
	}
}

// NoEncryption reports encrypted documents
func NoEncryption() Rule {
	return RuleFunc{
		RuleName: "NoEncryption",
		Fn: func(h *reader.ObjectHash) ([]Issue, error) {
			if !h.Encrypted() {
				return nil, nil
			}
			issue := Issue{Rule: "NoEncryption", Message: "document is encrypted"}
			if ref, ok := h.Trailer().GetReference("Encrypt"); ok {
				issue.Ref = ref
			}
			return []Issue{issue}, nil
		},
	}
}

// RequireInfoKeys reports each key missing from the /Info dictionary
func RequireInfoKeys(keys ...string) Rule {
	return RuleFunc{
		RuleName: "RequireInfoKeys",
		Fn: func(h *reader.ObjectHash) ([]Issue, error) {
			info, err := h.DerefDict(h.Trailer().Get("Info"))
			if err != nil {
				return nil, err
			}
			var issues []Issue
			for _, key := range keys {
				value, err := h.Object(info.Get(key))
				if err != nil {
					return nil, err
				}
				switch v := value.(type) {
				case nil, core.Null:
				case core.String:
					if len(v) > 0 {
						continue
					}
				default:
					continue
				}
				issues = append(issues, Issue{
					Rule:    "RequireInfoKeys",
					Message: fmt.Sprintf("/Info has no /%s", key),
				})
			}
			return issues, nil
		},
	}
}

// FontsEmbedded reports every font whose program is not embedded. Type3
// fonts are defined by content streams and always pass.
func FontsEmbedded() Rule {
	return RuleFunc{
		RuleName: "FontsEmbedded",
		Fn: func(h *reader.ObjectHash) ([]Issue, error) {
			var issues []Issue
			err := h.Each(func(ref core.Reference, obj core.Object) error {
				dict, ok := obj.(core.Dict)
				if !ok {
					return nil
				}
				if typ, _ := dict.GetName("Type"); typ != "Font" {
					return nil
				}
				embedded, err := fontEmbedded(h, dict)
				if err != nil {
					return fmt.Errorf("font %s: %w", ref, err)
				}
				if !embedded {
					base, _ := dict.GetName("BaseFont")
					issues = append(issues, Issue{
						Rule:    "FontsEmbedded",
						Message: fmt.Sprintf("font %s is not embedded", base),
						Ref:     ref,
					})
				}
				return nil
			})
			return issues, err
		},
	}
}

func fontEmbedded(h *reader.ObjectHash, font core.Dict) (bool, error) {
	subtype, _ := font.GetName("Subtype")
	switch subtype {
	case "Type3":
		return true, nil
	case "Type0":
		descendants, err := h.DerefArray(font.Get("DescendantFonts"))
		if err != nil {
			return false, err
		}
		if len(descendants) == 0 {
			return false, nil
		}
		// descendant fonts usually have no /Type, so Each never visits them
		cid, err := h.DerefDict(descendants.Get(0))
		if err != nil || cid == nil {
			return false, err
		}
		return fontEmbedded(h, cid)
	}

	descriptor, err := h.DerefDict(font.Get("FontDescriptor"))
	if err != nil || descriptor == nil {
		return false, err
	}
	for _, key := range []string{"FontFile", "FontFile2", "FontFile3"} {
		if descriptor.Has(key) {
			return true, nil
		}
	}
	return false, nil
}
