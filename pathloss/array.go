package pathloss

import (
	"gonum.org/v1/gonum/mat"
)

// Mask is a boolean matrix. As a mat.Matrix it reads 1 where set and 0
// elsewhere, so it scales and broadcasts like any numeric input.
type Mask struct {
	rows, cols int
	data       []bool
}

// NewMask returns an r x c mask. data is row-major and may be nil.
func NewMask(r, c int, data []bool) *Mask {
	if r <= 0 || c <= 0 {
		panic(mat.ErrZeroLength)
	}
	if data == nil {
		data = make([]bool, r*c)
	}
	if len(data) != r*c {
		panic(mat.ErrShape)
	}
	return &Mask{rows: r, cols: c, data: data}
}

func (m *Mask) Dims() (r, c int) { return m.rows, m.cols }

func (m *Mask) At(i, j int) float64 {
	if m.IsSet(i, j) {
		return 1
	}
	return 0
}

func (m *Mask) T() mat.Matrix { return mat.Transpose{Matrix: m} }

func (m *Mask) IsSet(i, j int) bool {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(mat.ErrIndexOutOfRange)
	}
	return m.data[i*m.cols+j]
}

func (m *Mask) Set(i, j int, v bool) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(mat.ErrIndexOutOfRange)
	}
	m.data[i*m.cols+j] = v
}

// Scalar wraps v as a 1x1 matrix
func Scalar(v float64) *mat.Dense {
	return mat.NewDense(1, 1, []float64{v})
}

// Row wraps v as a 1 x len(v) matrix, the shape a flat list broadcasts as
func Row(v ...float64) *mat.Dense {
	return mat.NewDense(1, len(v), v)
}

// Column wraps v as a len(v) x 1 matrix
func Column(v ...float64) *mat.Dense {
	return mat.NewDense(len(v), 1, v)
}

type operand struct {
	name string
	m    mat.Matrix
}

// broadcast returns the common shape of the operands: along each axis the
// sizes must agree or be 1.
func broadcast(ops ...operand) (r, c int, err error) {
	var name string
	for k, op := range ops {
		or, oc := op.m.Dims()
		if k == 0 {
			r, c, name = or, oc, op.name
			continue
		}
		nr, okr := joinDim(r, or)
		nc, okc := joinDim(c, oc)
		if !okr || !okc {
			return 0, 0, &ShapeMismatchError{
				Left: name, LeftRows: r, LeftCols: c,
				Right: op.name, RightRows: or, RightCols: oc,
			}
		}
		r, c = nr, nc
		name = name + "," + op.name
	}
	return r, c, nil
}

func joinDim(a, b int) (int, bool) {
	switch {
	case a == b:
		return a, true
	case a == 1:
		return b, true
	case b == 1:
		return a, true
	}
	return 0, false
}

// at reads m at (i, j) of the broadcast shape
func at(m mat.Matrix, i, j int) float64 {
	r, c := m.Dims()
	if r == 1 {
		i = 0
	}
	if c == 1 {
		j = 0
	}
	return m.At(i, j)
}

// repeatColumns repeats every column of m n times in place: columns
// a b become a a b b for n = 2.
func repeatColumns(m *mat.Dense, n int) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c*n, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			for s := 0; s < n; s++ {
				out.Set(i, j*n+s, v)
			}
		}
	}
	return out
}
