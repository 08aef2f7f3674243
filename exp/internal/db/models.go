package db

type (
	// Dataset represents a generated input matrix
	Dataset struct {
		ID   int64
		Seed int64
		Rows int
		Cols int
		// Unique constraint on (Seed, Rows, Cols)
	}

	// Param represents solver parameters
	Param struct {
		ID         int64
		Components int
		Penalty    float64
		// Ridge is +Inf for the orthonormal branch
		Ridge       float64
		TargetBound float64
		// Unique constraint on (Components, Penalty, Ridge, TargetBound)
	}

	// Run represents a solver outcome
	Run struct {
		ID        int64
		DatasetID int64
		ParamID   int64

		Iterations   int
		Converged    bool
		Objective    float64
		Sparsity     float64
		ElapsedMs    float64
		LineSearches int

		// Packed non-zero pattern of the loadings
		Support     []uint64
		SupportRows int
		SupportCols int

		Trace []float64

		// Unique constraint on (DatasetID, ParamID)
	}
)
