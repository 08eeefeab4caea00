package mapping

// Opts carries the mapping knobs shared by the resolvers and the batch
// pipeline.
type Opts struct {
	// MaxMismatches bounds the Hamming distance of any reported alignment.
	MaxMismatches int
	// NReadsToProcess caps the number of reads loaded per batch. Values above
	// MaxReadsPerBatch are clamped by the CLI.
	NReadsToProcess int
	// MaxCandidates skips a seed whose refined bucket region exceeds it,
	// bounding worst-case work on low-complexity seeds.
	MaxCandidates int
	// TopK is the number of candidates retained per mate in paired-end mode.
	TopK int
	// FragRange is the maximum fragment length of a valid mate pair,
	// inclusive.
	FragRange int
	// NumThreads is the number of worker shards per batch.
	NumThreads int
	// AGWildcard additionally maps single-end reads against the G→A image.
	// It has no effect in paired-end mode, where mate 2 always uses that
	// image.
	AGWildcard bool
	// Adapter, when nonempty, is clipped from read suffixes before mapping.
	Adapter string
	// MR selects the minimal tab-delimited output format instead of SAM. It
	// is derived from the suffix of the user's output path, before any
	// per-input suffixing.
	MR bool
	// Ambiguous enables the auxiliary output for ambiguous reads.
	Ambiguous bool
	// Unmapped enables the auxiliary output for unmapped reads.
	Unmapped bool
}

// DefaultOpts sets the default values of Opts.
var DefaultOpts = Opts{
	MaxMismatches:   6,    // -mismatch
	NReadsToProcess: 1e6,  // -number
	MaxCandidates:   5000, // -bucket
	TopK:            50,   // -topk
	FragRange:       1000, // -fraglen
	NumThreads:      1,    // -thread
}

const (
	// MaxReadsPerBatch is the hard cap on NReadsToProcess.
	MaxReadsPerBatch = 5000000
	// MinTopK and MaxTopK bound the -topk option in paired-end mode.
	MinTopK = 2
	MaxTopK = 300
)
