package mask

// Binding ties a mask to one field. A nil Binding, or one without a field,
// ignores every event.
type Binding struct {
	Field *Field
	Mask  Mask
}

// Attach binds m to f. Attaching to a nil field returns nil.
//
// PriceMask bindings also drop the field's step attribute and convert the
// value to canonical form when the owning form is submitted.
func Attach(f *Field, m Mask) *Binding {
	if f == nil || m == nil {
		return nil
	}
	b := &Binding{Field: f, Mask: m}
	if pm, ok := m.(PriceMask); ok {
		f.Step = ""
		if f.form != nil {
			f.form.addSubmitHook(func() { pm.Submit(f) })
		}
	}
	return b
}

// Input replaces the field content with raw and applies the mask.
func (b *Binding) Input(raw string) {
	if b == nil || b.Field == nil {
		return
	}
	b.Field.Value = raw
	b.Mask.Input(b.Field)
}

// Type simulates keystrokes: each character is appended to the current
// content and followed by an input event.
func (b *Binding) Type(keys string) {
	if b == nil || b.Field == nil {
		return
	}
	for _, r := range keys {
		b.Input(b.Field.Value + string(r))
	}
}

// Blur fires the blur event.
func (b *Binding) Blur() {
	if b == nil || b.Field == nil {
		return
	}
	b.Mask.Blur(b.Field)
}

// Value returns the field's current content.
func (b *Binding) Value() string {
	if b == nil || b.Field == nil {
		return ""
	}
	return b.Field.Value
}

// Bindings are the masks attached by Init, in attachment order.
type Bindings []*Binding

// Init attaches masks to every matching field of form: ClassMoney and
// ClassSimpleMoney by class marker, then the price mask by field name.
// A nil form yields no bindings.
func Init(form *Form) Bindings {
	if form == nil {
		return nil
	}
	var out Bindings
	fields := form.Fields()
	for _, f := range fields {
		if f.HasClass(ClassMoney) {
			out = append(out, Attach(f, MoneyMask{}))
		}
	}
	for _, f := range fields {
		if f.HasClass(ClassSimpleMoney) {
			out = append(out, Attach(f, SimpleMoneyMask{}))
		}
	}
	for _, f := range fields {
		if f.Name == PriceFieldName && f.Type != TypeHidden {
			out = append(out, Attach(f, PriceMask{}))
		}
	}
	return out
}

// For returns the first binding whose field currently has the given name.
func (bs Bindings) For(name string) *Binding {
	for _, b := range bs {
		if b != nil && b.Field != nil && b.Field.Name == name {
			return b
		}
	}
	return nil
}
