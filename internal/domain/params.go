package domain

// FitParameters are the scalar inputs of one seismogenic index estimation.
// VolumeStart and VolumeEnd of 0 are "unset" sentinels, not literal bounds:
// an unset VolumeStart rebases the window at the first surviving event's
// volume, an unset VolumeEnd leaves the high side untruncated.
type FitParameters struct {
	BValue          float64 // Gutenberg-Richter b-value of the catalog
	MagnitudeCutoff float64 // completeness magnitude Mc; events strictly below are dropped
	VolumeStart     float64 // low volume bound (0 = rebase at first survivor)
	VolumeEnd       float64 // high volume bound (0 = unbounded)
}
