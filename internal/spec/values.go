package spec

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// decodeSettingsAttr evaluates an object-valued attribute expression into a
// settings map. Each value decodes as a string scalar or a list of strings;
// the distinction is preserved because the settings merge rules treat the
// two shapes differently. Numbers and booleans decode as their string form,
// matching how the project format stores them.
func decodeSettingsAttr(expr hcl.Expression) (map[string]any, error) {
	out := map[string]any{}
	if expr == nil {
		return out, nil
	}
	value, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if value.IsNull() {
		return out, nil
	}
	if !value.Type().IsObjectType() && !value.Type().IsMapType() {
		return nil, fmt.Errorf("settings must be an object")
	}
	for key, element := range value.AsValueMap() {
		decoded, err := decodeSettingValue(element)
		if err != nil {
			return nil, fmt.Errorf("setting %q: %w", key, err)
		}
		out[key] = decoded
	}
	return out, nil
}

// decodeSettingValue converts one cty value into string or []string.
func decodeSettingValue(value cty.Value) (any, error) {
	ty := value.Type()
	switch {
	case ty == cty.String:
		return value.AsString(), nil
	case ty == cty.Bool:
		if value.True() {
			return "YES", nil
		}
		return "NO", nil
	case ty == cty.Number:
		return value.AsBigFloat().Text('f', -1), nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		var list []string
		for it := value.ElementIterator(); it.Next(); {
			_, element := it.Element()
			scalar, err := decodeSettingValue(element)
			if err != nil {
				return nil, err
			}
			s, ok := scalar.(string)
			if !ok {
				return nil, fmt.Errorf("nested lists are not valid setting values")
			}
			list = append(list, s)
		}
		return list, nil
	}
	return nil, fmt.Errorf("unsupported setting value type %s", ty.FriendlyName())
}
