package vebset

import "encoding/binary"

const (
	wireMagic   = "vebbitset"
	wireVersion = byte(0)
)

// Serialize encodes the set into a self-delimiting byte slice: a fixed
// magic and version header followed by the recursive tagged node format
// described by the node hierarchy itself — each level's min/max, a flag
// byte for whether cluster data follows, a cluster count, and then the
// summary and sorted clusters each encoded the same way one level down.
func (v *VebSet) Serialize() []byte {
	buf := make([]byte, 0, 64)
	buf = append(buf, wireMagic...)
	buf = append(buf, wireVersion)
	switch v.kind {
	case variantEmpty:
		buf = append(buf, byte(variantEmpty))
	case variantLeaf256:
		buf = appendLeaf(buf, v.leaf)
	case variantNode16:
		buf = appendNode16(buf, v.n16)
	case variantNode32:
		buf = appendNode32(buf, v.n32)
	case variantNode64:
		buf = appendNode64(buf, v.n64)
	}
	return buf
}

func appendLeaf(buf []byte, l *Leaf256) []byte {
	buf = append(buf, byte(variantLeaf256))
	var w [8]byte
	for _, word := range l {
		binary.BigEndian.PutUint64(w[:], word)
		buf = append(buf, w[:]...)
	}
	return buf
}

func appendNode16(buf []byte, n *Node16) []byte {
	buf = append(buf, byte(variantNode16))
	var b2 [2]byte
	binary.BigEndian.PutUint16(b2[:], n.min)
	buf = append(buf, b2[:]...)
	binary.BigEndian.PutUint16(b2[:], n.max)
	buf = append(buf, b2[:]...)
	if n.data == nil {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	binary.BigEndian.PutUint16(b2[:], uint16(len(n.data.clusters)))
	buf = append(buf, b2[:]...)
	buf = appendLeaf(buf, &n.data.summary)
	for i := range n.data.clusters {
		buf = appendLeaf(buf, &n.data.clusters[i])
	}
	return buf
}

func appendNode32(buf []byte, n *Node32) []byte {
	buf = append(buf, byte(variantNode32))
	var b4 [4]byte
	binary.BigEndian.PutUint32(b4[:], n.min)
	buf = append(buf, b4[:]...)
	binary.BigEndian.PutUint32(b4[:], n.max)
	buf = append(buf, b4[:]...)
	if n.data == nil {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	var count uint32
	n.eachClusterKey(func(uint16) { count++ })
	var b4c [4]byte
	binary.BigEndian.PutUint32(b4c[:], count)
	buf = append(buf, b4c[:]...)
	buf = appendNode16(buf, &n.data.summary)
	n.eachClusterKey(func(h uint16) {
		cl, _ := n.data.clusters.Get(h)
		buf = appendNode16(buf, cl)
	})
	return buf
}

func appendNode64(buf []byte, n *Node64) []byte {
	buf = append(buf, byte(variantNode64))
	var b8 [8]byte
	binary.BigEndian.PutUint64(b8[:], n.min)
	buf = append(buf, b8[:]...)
	binary.BigEndian.PutUint64(b8[:], n.max)
	buf = append(buf, b8[:]...)
	if n.data == nil {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	var count uint32
	n.eachClusterKey(func(uint32) { count++ })
	var b4c [4]byte
	binary.BigEndian.PutUint32(b4c[:], count)
	buf = append(buf, b4c[:]...)
	buf = appendNode32(buf, &n.data.summary)
	n.eachClusterKey(func(h uint32) {
		cl, _ := n.data.clusters.Get(h)
		buf = appendNode32(buf, cl)
	})
	return buf
}

func readTag(buf []byte, pos int) (byte, int, error) {
	if pos >= len(buf) {
		return 0, pos, &DeserializeError{Err: ErrShortBuffer, Pos: pos}
	}
	return buf[pos], pos + 1, nil
}

func readLeaf(buf []byte, pos int) (*Leaf256, int, error) {
	tag, pos, err := readTag(buf, pos)
	if err != nil {
		return nil, pos, err
	}
	if variant(tag) != variantLeaf256 {
		return nil, pos, &DeserializeError{Err: ErrUnsupportedTag, Pos: pos - 1}
	}
	if pos+32 > len(buf) {
		return nil, pos, &DeserializeError{Err: ErrShortBuffer, Pos: pos}
	}
	var l Leaf256
	for i := range l {
		l[i] = binary.BigEndian.Uint64(buf[pos : pos+8])
		pos += 8
	}
	return &l, pos, nil
}

func readNode16(buf []byte, pos int, tracker *allocTracker) (*Node16, int, error) {
	tag, pos, err := readTag(buf, pos)
	if err != nil {
		return nil, pos, err
	}
	if variant(tag) != variantNode16 {
		return nil, pos, &DeserializeError{Err: ErrUnsupportedTag, Pos: pos - 1}
	}
	if pos+5 > len(buf) {
		return nil, pos, &DeserializeError{Err: ErrShortBuffer, Pos: pos}
	}
	n := &Node16{}
	n.min = binary.BigEndian.Uint16(buf[pos : pos+2])
	pos += 2
	n.max = binary.BigEndian.Uint16(buf[pos : pos+2])
	pos += 2
	flag := buf[pos]
	pos++
	if flag == 0 {
		return n, pos, nil
	}
	if pos+2 > len(buf) {
		return nil, pos, &DeserializeError{Err: ErrShortBuffer, Pos: pos}
	}
	count := int(binary.BigEndian.Uint16(buf[pos : pos+2]))
	pos += 2
	summary, pos, err := readLeaf(buf, pos)
	if err != nil {
		return nil, pos, err
	}
	clusters := make([]Leaf256, count, count)
	for i := 0; i < count; i++ {
		var cl *Leaf256
		cl, pos, err = readLeaf(buf, pos)
		if err != nil {
			return nil, pos, err
		}
		clusters[i] = *cl
	}
	n.data = &node16Clusters{summary: *summary, clusters: clusters}
	tracker.add(clusterBlockBytes(cap(clusters)))
	return n, pos, nil
}

func readNode32(buf []byte, pos int, tracker *allocTracker) (*Node32, int, error) {
	tag, pos, err := readTag(buf, pos)
	if err != nil {
		return nil, pos, err
	}
	if variant(tag) != variantNode32 {
		return nil, pos, &DeserializeError{Err: ErrUnsupportedTag, Pos: pos - 1}
	}
	if pos+9 > len(buf) {
		return nil, pos, &DeserializeError{Err: ErrShortBuffer, Pos: pos}
	}
	n := &Node32{}
	n.min = binary.BigEndian.Uint32(buf[pos : pos+4])
	pos += 4
	n.max = binary.BigEndian.Uint32(buf[pos : pos+4])
	pos += 4
	flag := buf[pos]
	pos++
	if flag == 0 {
		return n, pos, nil
	}
	if pos+4 > len(buf) {
		return nil, pos, &DeserializeError{Err: ErrShortBuffer, Pos: pos}
	}
	count := int(binary.BigEndian.Uint32(buf[pos : pos+4]))
	pos += 4
	summary, pos, err := readNode16(buf, pos, tracker)
	if err != nil {
		return nil, pos, err
	}
	n.data = &node32Clusters{clusters: newHashtable[uint16, *Node16]()}
	n.data.summary = *summary
	if n.data.summary.Size() < count {
		return nil, pos, &DeserializeError{Err: ErrShortBuffer, Pos: pos}
	}
	h := n.data.summary.Min()
	ok := true
	for i := 0; i < count; i++ {
		if !ok {
			return nil, pos, &DeserializeError{Err: ErrShortBuffer, Pos: pos}
		}
		var cl *Node16
		cl, pos, err = readNode16(buf, pos, tracker)
		if err != nil {
			return nil, pos, err
		}
		cl.SetKey(h)
		n.data.clusters.Set(h, cl)
		tracker.add(node16ShellBytes)
		h, ok = n.data.summary.Successor(h)
	}
	return n, pos, nil
}

func readNode64(buf []byte, pos int, tracker *allocTracker) (*Node64, int, error) {
	tag, pos, err := readTag(buf, pos)
	if err != nil {
		return nil, pos, err
	}
	if variant(tag) != variantNode64 {
		return nil, pos, &DeserializeError{Err: ErrUnsupportedTag, Pos: pos - 1}
	}
	if pos+17 > len(buf) {
		return nil, pos, &DeserializeError{Err: ErrShortBuffer, Pos: pos}
	}
	n := &Node64{}
	n.min = binary.BigEndian.Uint64(buf[pos : pos+8])
	pos += 8
	n.max = binary.BigEndian.Uint64(buf[pos : pos+8])
	pos += 8
	flag := buf[pos]
	pos++
	if flag == 0 {
		return n, pos, nil
	}
	if pos+4 > len(buf) {
		return nil, pos, &DeserializeError{Err: ErrShortBuffer, Pos: pos}
	}
	count := int(binary.BigEndian.Uint32(buf[pos : pos+4]))
	pos += 4
	summary, pos, err := readNode32(buf, pos, tracker)
	if err != nil {
		return nil, pos, err
	}
	n.data = &node64Clusters{clusters: newHashtable[uint32, *Node32]()}
	n.data.summary = *summary
	if n.data.summary.Size() < count {
		return nil, pos, &DeserializeError{Err: ErrShortBuffer, Pos: pos}
	}
	h := n.data.summary.Min()
	ok := true
	for i := 0; i < count; i++ {
		if !ok {
			return nil, pos, &DeserializeError{Err: ErrShortBuffer, Pos: pos}
		}
		var cl *Node32
		cl, pos, err = readNode32(buf, pos, tracker)
		if err != nil {
			return nil, pos, err
		}
		cl.SetKey(h)
		n.data.clusters.Set(h, cl)
		tracker.add(node32ShellBytes)
		h, ok = n.data.summary.Successor(h)
	}
	return n, pos, nil
}

// Deserialize decodes a buffer produced by Serialize into a fresh VebSet.
func Deserialize(buf []byte) (*VebSet, error) {
	if len(buf) < len(wireMagic)+2 {
		return nil, &DeserializeError{Err: ErrShortBuffer, Pos: len(buf)}
	}
	if string(buf[:len(wireMagic)]) != wireMagic {
		return nil, &DeserializeError{Err: ErrBadMagic, Pos: 0}
	}
	pos := len(wireMagic)
	if buf[pos] != wireVersion {
		return nil, &DeserializeError{Err: ErrBadVersion, Pos: pos}
	}
	pos++

	tagByte, _, err := readTag(buf, pos)
	if err != nil {
		return nil, err
	}
	tag := variant(tagByte)
	if tag > variantNode64 {
		return nil, &DeserializeError{Err: ErrUnsupportedTag, Pos: pos}
	}

	v := New()
	switch tag {
	case variantEmpty:
		return v, nil
	case variantLeaf256:
		leaf, _, err := readLeaf(buf, pos)
		if err != nil {
			return nil, err
		}
		v.kind, v.leaf = variantLeaf256, leaf
		if m, ok := leaf.Max(); ok {
			v.maxSeen = uint64(m)
		}
	case variantNode16:
		n, _, err := readNode16(buf, pos, v.tracker)
		if err != nil {
			return nil, err
		}
		v.kind, v.n16 = variantNode16, n
		v.maxSeen = uint64(n.max)
	case variantNode32:
		n, _, err := readNode32(buf, pos, v.tracker)
		if err != nil {
			return nil, err
		}
		v.kind, v.n32 = variantNode32, n
		v.maxSeen = uint64(n.max)
	case variantNode64:
		n, _, err := readNode64(buf, pos, v.tracker)
		if err != nil {
			return nil, err
		}
		v.kind, v.n64 = variantNode64, n
		v.maxSeen = n.max
	}
	return v, nil
}
