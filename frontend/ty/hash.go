package ty

import (
	"encoding/binary"
	"hash/fnv"
)

// hashes are consistent with Equal: equal types hash equally

const hashPrime uint64 = 31

func (t Apply) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte{'A', byte(t.Ctor.Kind)})
	_, _ = h.Write([]byte(t.Ctor.Name))
	return h.Sum64()*hashPrime ^ t.Params.Hash()
}

func (t Projection) Hash() uint64 {
	return t.ProjectionTy.Hash()
}

func (p ProjectionTy) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte{'P'})
	_, _ = h.Write([]byte(p.Assoc.Trait))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(p.Assoc.Name))
	return h.Sum64()*hashPrime ^ p.Params.Hash()
}

func (t Param) Hash() uint64 {
	h := fnv.New64a()
	if t.Name != "" {
		_, _ = h.Write([]byte{'N'})
		_, _ = h.Write([]byte(t.Name))
		return h.Sum64()
	}
	_, _ = h.Write([]byte{'T'})
	_, _ = h.Write(binary.LittleEndian.AppendUint32(nil, t.Idx))
	return h.Sum64()
}

func (t Bound) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte{'B'})
	_, _ = h.Write(binary.LittleEndian.AppendUint32(nil, uint32(t)))
	return h.Sum64()
}

func (t InferTy) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte{'I', byte(t.Kind)})
	_, _ = h.Write(binary.LittleEndian.AppendUint32(nil, uint32(t.ID)))
	return h.Sum64()
}

func (Unknown) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte{'U'})
	return h.Sum64()
}

func (s Substs) Hash() uint64 {
	hash := uint64(len(s))
	for _, t := range s {
		hash = hash*hashPrime + t.Hash()
	}
	return hash
}

func (r TraitRef) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte{'R'})
	_, _ = h.Write([]byte(r.Trait))
	return h.Sum64()*hashPrime ^ r.Substs.Hash()
}

func (p ProjectionPredicate) Hash() uint64 {
	return p.Projection.Hash()*hashPrime ^ p.Ty.Hash()
}
