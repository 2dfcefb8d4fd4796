package clone

// Policy holds the per-file copy configuration.
// It is built once from the command line and never mutated afterwards.
type Policy struct {
	Recursive   bool
	Backup      bool
	Force       bool
	Interactive bool
	Preserve    bool
	Update      bool
}

// Archive returns the policy with archive mode applied:
// recursive copying plus permission preservation.
func (p Policy) Archive() Policy {
	p.Recursive = true
	p.Preserve = true
	return p
}
