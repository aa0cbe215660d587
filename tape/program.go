package tape

// Program is a minimal concrete Tape: an in-memory slice of
// instructions plus a precomputed choice count. It exists so this
// module's own tests (and callers without an external planner handy)
// can build tapes directly; the real planner/register-allocator and
// simplifier live outside this module, per spec.md §1.
type Program struct {
	insts       []Inst
	choiceCount int
}

var _ Tape = (*Program)(nil)

func (p *Program) Len() int            { return len(p.insts) }
func (p *Program) At(i int) Inst       { return p.insts[i] }
func (p *Program) ChoiceCount() int    { return p.choiceCount }
func (p *Program) Instructions() []Inst { return p.insts }

// Builder accumulates instructions for a Program, tracking the next
// free virtual register and spill slot so callers can write tapes by
// hand in tests without manually bookkeeping register numbers.
type Builder struct {
	insts    []Inst
	nextReg  Reg
	nextSlot Slot
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{nextSlot: RegisterLimit}
}

func (b *Builder) alloc() Reg {
	r := b.nextReg
	if int(r) >= RegisterLimit {
		panic("tape: exceeded RegisterLimit virtual registers in Builder")
	}
	b.nextReg++
	return r
}

// AllocSlot reserves a fresh spill slot for explicit Load/Store tests.
func (b *Builder) AllocSlot() Slot {
	s := b.nextSlot
	b.nextSlot++
	return s
}

func (b *Builder) push(i Inst) Reg {
	out := b.alloc()
	i.Out = out
	b.insts = append(b.insts, i)
	return out
}

func (b *Builder) Input(axis uint8) Reg {
	return b.push(Inst{Op: OpInput, Axis: axis})
}

func (b *Builder) CopyImm(v float32) Reg {
	return b.push(Inst{Op: OpCopyImm, Imm: v})
}

func (b *Builder) Load(slot Slot) Reg {
	return b.push(Inst{Op: OpLoad, Slot: slot})
}

// Store emits a Store instruction; it has no output register.
func (b *Builder) Store(slot Slot, src Reg) {
	b.insts = append(b.insts, Inst{Op: OpStore, Slot: slot, B: src})
}

func (b *Builder) unary(op Op, a Reg) Reg {
	return b.push(Inst{Op: op, A: a})
}

func (b *Builder) Copy(a Reg) Reg   { return b.unary(OpCopyReg, a) }
func (b *Builder) Neg(a Reg) Reg    { return b.unary(OpNegReg, a) }
func (b *Builder) Abs(a Reg) Reg    { return b.unary(OpAbsReg, a) }
func (b *Builder) Recip(a Reg) Reg  { return b.unary(OpRecipReg, a) }
func (b *Builder) Sqrt(a Reg) Reg   { return b.unary(OpSqrtReg, a) }
func (b *Builder) Square(a Reg) Reg { return b.unary(OpSquareReg, a) }

func (b *Builder) binRegReg(op Op, a, rhs Reg) Reg {
	return b.push(Inst{Op: op, A: a, B: rhs})
}

func (b *Builder) Add(a, rhs Reg) Reg { return b.binRegReg(OpAddRegReg, a, rhs) }
func (b *Builder) Sub(a, rhs Reg) Reg { return b.binRegReg(OpSubRegReg, a, rhs) }
func (b *Builder) Mul(a, rhs Reg) Reg { return b.binRegReg(OpMulRegReg, a, rhs) }

// Max and Min emit choice-producing nodes; the Builder counts them so
// the resulting Program's ChoiceCount is exact.
func (b *Builder) Max(a, rhs Reg) Reg {
	return b.binRegReg(OpMaxRegReg, a, rhs)
}

func (b *Builder) Min(a, rhs Reg) Reg {
	return b.binRegReg(OpMinRegReg, a, rhs)
}

func (b *Builder) binRegImm(op Op, a Reg, imm float32) Reg {
	return b.push(Inst{Op: op, A: a, Imm: imm})
}

func (b *Builder) AddImm(a Reg, imm float32) Reg { return b.binRegImm(OpAddRegImm, a, imm) }
func (b *Builder) SubImm(a Reg, imm float32) Reg { return b.binRegImm(OpSubRegImm, a, imm) }
func (b *Builder) ImmSub(a Reg, imm float32) Reg { return b.binRegImm(OpSubImmReg, a, imm) }
func (b *Builder) MulImm(a Reg, imm float32) Reg { return b.binRegImm(OpMulRegImm, a, imm) }
func (b *Builder) MaxImm(a Reg, imm float32) Reg { return b.binRegImm(OpMaxRegImm, a, imm) }
func (b *Builder) MinImm(a Reg, imm float32) Reg { return b.binRegImm(OpMinRegImm, a, imm) }

// Program finalizes the instructions accumulated so far into an
// immutable Tape.
func (b *Builder) Program() *Program {
	count := 0
	for _, inst := range b.insts {
		if inst.Op.IsMinMax() {
			count++
		}
	}
	insts := make([]Inst, len(b.insts))
	copy(insts, b.insts)
	return &Program{insts: insts, choiceCount: count}
}
