package vcf

// alignWindow is the number of flanking bases fetched per reference request
// while shifting an indel.
const alignWindow = 100

// Sequencer provides reference bases for alignment.
type Sequencer interface {
	// Sequence returns the upper-cased bases of chrom between start and end
	// (1-based, inclusive), clamped to the contig. ok is false when the
	// contig cannot be resolved.
	Sequence(chrom string, start, end int64) (seq string, ok bool)
}

// AlignOnPlusStrand shifts a pure insertion or deletion to its leftmost
// equivalent position. Other variants are returned unchanged, as is any
// variant whose flanking sequence cannot be fetched.
func (v *Variant) AlignOnPlusStrand(ref Sequencer) *Variant {
	if !v.IsInsertion() && !v.IsDeletion() {
		return v
	}
	seq := v.indelBases()
	pos := v.Pos

	for pos > 1 {
		lo := pos - alignWindow
		if lo < 1 {
			lo = 1
		}
		flank, ok := ref.Sequence(v.Chrom, lo, pos-1)
		if !ok {
			return v
		}
		if flank == "" {
			break
		}
		// After k shifts the base preceding the indel is flank[len-1-k].
		i := len(flank) - 1
		for ; i >= 0 && flank[i] == seq[len(seq)-1]; i-- {
			seq = flank[i:i+1] + seq[:len(seq)-1]
			pos--
		}
		if i >= 0 {
			break
		}
	}
	return v.withIndel(pos, seq)
}

// AlignOnMinusStrand shifts a pure insertion or deletion to its rightmost
// equivalent position. Other variants are returned unchanged, as is any
// variant whose flanking sequence cannot be fetched.
func (v *Variant) AlignOnMinusStrand(ref Sequencer) *Variant {
	if !v.IsInsertion() && !v.IsDeletion() {
		return v
	}
	seq := v.indelBases()
	pos := v.Pos
	span := int64(len(v.Ref))

	for {
		from := pos + span
		flank, ok := ref.Sequence(v.Chrom, from, from+alignWindow-1)
		if !ok {
			return v
		}
		if flank == "" {
			break
		}
		// After k shifts the base following the indel is flank[k].
		i := 0
		for ; i < len(flank) && flank[i] == seq[0]; i++ {
			seq = seq[1:] + flank[i:i+1]
			pos++
		}
		if i < len(flank) || len(flank) < alignWindow {
			break
		}
	}
	return v.withIndel(pos, seq)
}

func (v *Variant) indelBases() string {
	if v.IsInsertion() {
		return v.Alt
	}
	return v.Ref
}

func (v *Variant) withIndel(pos int64, seq string) *Variant {
	if pos == v.Pos {
		return v
	}
	n := *v
	n.Pos = pos
	if v.IsInsertion() {
		n.Alt = seq
	} else {
		n.Ref = seq
	}
	return &n
}
