package interp

// PropertyDescriptor is a partial record of a property's attributes.
// A nil pointer field means "absent" — distinguished from a present but
// zero-valued field (e.g. Value present and undefined, vs Value absent).
type PropertyDescriptor struct {
	Value        *Value
	Writable     *bool
	Get          *Value
	Set          *Value
	Enumerable   *bool
	Configurable *bool
}

func (d *PropertyDescriptor) IsDataDescriptor() bool {
	return d != nil && (d.Value != nil || d.Writable != nil)
}

func (d *PropertyDescriptor) IsAccessorDescriptor() bool {
	return d != nil && (d.Get != nil || d.Set != nil)
}

func (d *PropertyDescriptor) IsGenericDescriptor() bool {
	return d != nil && !d.IsDataDescriptor() && !d.IsAccessorDescriptor()
}

func boolPtr(b bool) *bool   { return &b }
func valuePtr(v Value) *Value { return &v }

// DataDescriptor builds a fully-populated data property descriptor.
func DataDescriptor(value Value, writable, enumerable, configurable bool) *PropertyDescriptor {
	return &PropertyDescriptor{
		Value:        valuePtr(value),
		Writable:     boolPtr(writable),
		Enumerable:   boolPtr(enumerable),
		Configurable: boolPtr(configurable),
	}
}

// AccessorDescriptor builds a fully-populated accessor property descriptor.
func AccessorDescriptor(get, set Value, enumerable, configurable bool) *PropertyDescriptor {
	return &PropertyDescriptor{
		Get:          valuePtr(get),
		Set:          valuePtr(set),
		Enumerable:   boolPtr(enumerable),
		Configurable: boolPtr(configurable),
	}
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// CompletePropertyDescriptor fills in default attribute values
// (Value/Writable default to undefined/false for a data descriptor,
// Get/Set default to undefined for an accessor descriptor, and
// Enumerable/Configurable default to false) for a descriptor about to
// become a concrete property.
func CompletePropertyDescriptor(desc *PropertyDescriptor) *PropertyDescriptor {
	out := *desc
	if out.IsGenericDescriptor() || out.IsDataDescriptor() {
		if out.Value == nil {
			out.Value = valuePtr(Undefined())
		}
		if out.Writable == nil {
			out.Writable = boolPtr(false)
		}
	} else {
		if out.Get == nil {
			out.Get = valuePtr(Undefined())
		}
		if out.Set == nil {
			out.Set = valuePtr(Undefined())
		}
	}
	if out.Enumerable == nil {
		out.Enumerable = boolPtr(false)
	}
	if out.Configurable == nil {
		out.Configurable = boolPtr(false)
	}
	return &out
}

// ValidateAndApplyPropertyDescriptor implements the spec algorithm of the
// same name (spec.md §4.2). O may be nil to validate without installing;
// no caller in this core passes a nil O.
func ValidateAndApplyPropertyDescriptor(o *Object, p PropertyKey, extensible bool, desc *PropertyDescriptor, current *PropertyDescriptor) bool {
	if current == nil {
		if !extensible {
			return false
		}
		if o != nil {
			o.installProperty(p, CompletePropertyDescriptor(desc))
		}
		return true
	}

	// No fields to apply.
	if desc.Value == nil && desc.Writable == nil && desc.Get == nil && desc.Set == nil &&
		desc.Enumerable == nil && desc.Configurable == nil {
		return true
	}

	if !boolOr(current.Configurable, false) {
		if desc.Configurable != nil && *desc.Configurable {
			return false
		}
		if desc.Enumerable != nil && *desc.Enumerable != boolOr(current.Enumerable, false) {
			return false
		}
		if !desc.IsGenericDescriptor() {
			if desc.IsDataDescriptor() != current.IsDataDescriptor() {
				return false
			}
			if current.IsDataDescriptor() {
				if !boolOr(current.Writable, false) {
					if desc.Writable != nil && *desc.Writable {
						return false
					}
					if desc.Value != nil && !SameValue(*desc.Value, *current.Value) {
						return false
					}
				}
			} else {
				if desc.Get != nil && !sameValueAccessor(*desc.Get, current.Get) {
					return false
				}
				if desc.Set != nil && !sameValueAccessor(*desc.Set, current.Set) {
					return false
				}
			}
		}
	}

	if o != nil {
		merged := mergeDescriptor(current, desc)
		o.installProperty(p, merged)
	}
	return true
}

func sameValueAccessor(v Value, cur *Value) bool {
	if cur == nil {
		return v.IsUndefined()
	}
	return SameValue(v, *cur)
}

// mergeDescriptor merges desc's present fields over current, handling
// the data<->accessor kind transition by resetting the attributes that
// don't carry across and preserving Configurable/Enumerable.
func mergeDescriptor(current, desc *PropertyDescriptor) *PropertyDescriptor {
	merged := &PropertyDescriptor{}

	configurable := current.Configurable
	if desc.Configurable != nil {
		configurable = desc.Configurable
	}
	enumerable := current.Enumerable
	if desc.Enumerable != nil {
		enumerable = desc.Enumerable
	}
	merged.Configurable = configurable
	merged.Enumerable = enumerable

	switchingKind := !desc.IsGenericDescriptor() && desc.IsDataDescriptor() != current.IsDataDescriptor()

	if desc.IsDataDescriptor() || (current.IsDataDescriptor() && !switchingKind && desc.IsGenericDescriptor()) {
		value := current.Value
		if desc.Value != nil {
			value = desc.Value
		}
		writable := current.Writable
		if desc.Writable != nil {
			writable = desc.Writable
		}
		if switchingKind {
			if value == nil {
				value = valuePtr(Undefined())
			}
			if writable == nil {
				writable = boolPtr(false)
			}
		}
		merged.Value = value
		merged.Writable = writable
		return merged
	}

	if desc.IsAccessorDescriptor() || (current.IsAccessorDescriptor() && !switchingKind && desc.IsGenericDescriptor()) {
		get := current.Get
		if desc.Get != nil {
			get = desc.Get
		}
		set := current.Set
		if desc.Set != nil {
			set = desc.Set
		}
		if switchingKind {
			if get == nil {
				get = valuePtr(Undefined())
			}
			if set == nil {
				set = valuePtr(Undefined())
			}
		}
		merged.Get = get
		merged.Set = set
		return merged
	}

	// Generic descriptor merged over current of the same kind, nothing
	// beyond Configurable/Enumerable changed.
	if current.IsDataDescriptor() {
		merged.Value = current.Value
		merged.Writable = current.Writable
	} else {
		merged.Get = current.Get
		merged.Set = current.Set
	}
	return merged
}
