// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.
// This code has been cleaned up, refactored, and turned into generics.

// Package merkle provides the merkle tree that summarizes the ordered set of
// transactions sealed in a block.
package merkle

import (
	"bytes"
	"errors"
	"fmt"
	"hash"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Hashable represents the behavior concrete data must exhibit to be used in
// the merkle tree.
type Hashable[T any] interface {
	Hash() ([]byte, error)
	Equals(other T) bool
}

// Level captures one pairing performed while building the tree. It exists for
// inspection only and carries no integrity weight.
type Level struct {
	Depth    int
	Left     []byte
	Right    []byte
	Combined []byte
}

// =============================================================================

// Tree represents a merkle tree that uses data of some type T that exhibits the
// behavior defined by the Hashable constraint.
type Tree[T Hashable[T]] struct {
	Root         *Node[T]
	Leafs        []*Node[T]
	MerkleRoot   []byte
	levels       []Level
	hashStrategy func() hash.Hash
}

// WithHashStrategy is used to change the default hash strategy of using the
// digest package when constructing a new tree.
func WithHashStrategy[T Hashable[T]](hashStrategy func() hash.Hash) func(t *Tree[T]) {
	return func(t *Tree[T]) {
		t.hashStrategy = hashStrategy
	}
}

// NewTree constructs a new merkle tree that uses data of some type T that
// exhibits the behavior defined by the Hashable interface.
func NewTree[T Hashable[T]](values []T, options ...func(t *Tree[T])) (*Tree[T], error) {
	t := Tree[T]{
		hashStrategy: digest.New,
	}

	for _, option := range options {
		option(&t)
	}

	if err := t.Generate(values); err != nil {
		return nil, err
	}

	return &t, nil
}

// Generate constructs the leafs and nodes of the tree from the specified
// data. If the tree has been generated previously, the tree is re-generated
// from scratch.
//
// An empty set of values produces a tree without nodes whose root is the hash
// of the empty byte sequence. A single value produces a root equal to the
// hash of that value.
func (t *Tree[T]) Generate(values []T) error {
	t.Root = nil
	t.Leafs = nil
	t.levels = nil

	if len(values) == 0 {
		h := t.hashStrategy()
		t.MerkleRoot = h.Sum(nil)
		return nil
	}

	leafs := make([]*Node[T], 0, len(values))
	for _, value := range values {
		hash, err := value.Hash()
		if err != nil {
			return err
		}

		leafs = append(leafs, &Node[T]{
			Hash:  hash,
			Value: value,
			leaf:  true,
			Tree:  t,
		})
	}

	t.Leafs = leafs

	if len(leafs) == 1 {
		t.Root = leafs[0]
		t.MerkleRoot = leafs[0].Hash
		return nil
	}

	root, err := t.buildIntermediate(leafs, 0)
	if err != nil {
		return err
	}

	t.Root = root
	t.MerkleRoot = root.Hash

	return nil
}

// Rebuild is a helper function that will rebuild the tree reusing only the
// data that it currently holds in the leaves.
func (t *Tree[T]) Rebuild() error {
	return t.Generate(t.Values())
}

// Proof returns the set of hashes and the order of concatenating those
// hashes for proving a value is in the tree. An order of 0 means the proof
// hash is concatenated first, 1 means it is concatenated second.
//
// Hash the value in question and fold it with the proof:
//
//	order 0: h = hash(proof[i] || h)
//	order 1: h = hash(h || proof[i])
//
// The final h should match the merkle root.
func (t *Tree[T]) Proof(data T) ([][]byte, []int64, error) {
	for _, node := range t.Leafs {
		if !node.Value.Equals(data) {
			continue
		}

		var merkleProof [][]byte
		var order []int64

		for current, parent := node, node.Parent; parent != nil; current, parent = parent, parent.Parent {
			if parent.Left == current {
				merkleProof = append(merkleProof, parent.Right.Hash)
				order = append(order, 1)
				continue
			}
			merkleProof = append(merkleProof, parent.Left.Hash)
			order = append(order, 0)
		}

		return merkleProof, order, nil
	}

	return nil, nil, errors.New("unable to find data in tree")
}

// ProofHex is Proof with the hashes hex encoded without a 0x prefix, the
// same form as RootHex.
func (t *Tree[T]) ProofHex(data T) ([]string, []int64, error) {
	proof, order, err := t.Proof(data)
	if err != nil {
		return nil, nil, err
	}

	out := make([]string, len(proof))
	for i, p := range proof {
		out[i] = hexutil.Encode(p)[2:]
	}

	return out, order, nil
}

// VerifyProof folds the leaf hash with the proof, as described by Proof,
// and reports whether the result is the root. It needs only the hashes so
// a client can check a proof without holding the tree. Hashes are hex
// encoded with or without a 0x prefix.
func VerifyProof(leaf string, proof []string, order []int64, root string) (bool, error) {
	if len(proof) != len(order) {
		return false, fmt.Errorf("proof has %d hashes and %d orders", len(proof), len(order))
	}

	hash, err := decodeHex(leaf)
	if err != nil {
		return false, fmt.Errorf("leaf: %w", err)
	}

	for i := range proof {
		p, err := decodeHex(proof[i])
		if err != nil {
			return false, fmt.Errorf("proof %d: %w", i, err)
		}

		h := digest.New()
		switch order[i] {
		case 0:
			h.Write(p)
			h.Write(hash)
		case 1:
			h.Write(hash)
			h.Write(p)
		default:
			return false, fmt.Errorf("proof %d: invalid order %d", i, order[i])
		}
		hash = h.Sum(nil)
	}

	want, err := decodeHex(root)
	if err != nil {
		return false, fmt.Errorf("root: %w", err)
	}

	return bytes.Equal(hash, want), nil
}

func decodeHex(s string) ([]byte, error) {
	if !has0xPrefix(s) {
		s = "0x" + s
	}

	return hexutil.Decode(s)
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// Verify validates the hashes at each level of the tree and returns an error
// if the resulting hash at the root of the tree doesn't match the root hash.
func (t *Tree[T]) Verify() error {
	calculated, err := t.calculateRoot()
	if err != nil {
		return err
	}

	if !bytes.Equal(t.MerkleRoot, calculated) {
		return errors.New("root hash invalid")
	}

	return nil
}

// VerifyData indicates whether a given piece of data is in the tree and if the
// hashes are valid for that data along its path to the root.
func (t *Tree[T]) VerifyData(data T) error {
	for _, node := range t.Leafs {
		if !node.Value.Equals(data) {
			continue
		}

		for parent := node.Parent; parent != nil; parent = parent.Parent {
			rightBytes, err := parent.Right.CalculateHash()
			if err != nil {
				return err
			}

			leftBytes, err := parent.Left.CalculateHash()
			if err != nil {
				return err
			}

			combined, err := t.combine(leftBytes, rightBytes)
			if err != nil {
				return err
			}

			if !bytes.Equal(combined, parent.Hash) {
				return errors.New("merkle root is not equivalent to the merkle root calculated on the critical path")
			}
		}

		return nil
	}

	return errors.New("data not found in tree")
}

// Values returns the values stored in the tree in their original order.
func (t *Tree[T]) Values() []T {
	values := make([]T, len(t.Leafs))
	for i, leaf := range t.Leafs {
		values[i] = leaf.Value
	}

	return values
}

// Levels returns the pairings performed while building the tree, bottom
// level first.
func (t *Tree[T]) Levels() []Level {
	levels := make([]Level, len(t.levels))
	copy(levels, t.levels)
	return levels
}

// RootHex converts the merkle root byte hash to a hex encoded string without
// a 0x prefix.
func (t *Tree[T]) RootHex() string {
	return hexutil.Encode(t.MerkleRoot)[2:]
}

// String returns a string representation of the tree. Only leaf nodes are
// included in the output.
func (t *Tree[T]) String() string {
	s := ""

	for _, l := range t.Leafs {
		s += fmt.Sprint(l)
		s += "\n"
	}

	return s
}

// MarshalText implements the TextMarshaler interface and produces a panic
// if anyone tries to marshal the Merkle tree. Use the Values function to
// return a slice that can be marshaled.
func (t *Tree[T]) MarshalText() (text []byte, err error) {
	panic("do not marshal the merkle tree, use Values")
}

// =============================================================================

// calculateRoot recomputes the root from the values held in the leaves.
func (t *Tree[T]) calculateRoot() ([]byte, error) {
	if t.Root == nil {
		h := t.hashStrategy()
		return h.Sum(nil), nil
	}

	return t.Root.verify()
}

// combine hashes the concatenation of two child hashes.
func (t *Tree[T]) combine(left []byte, right []byte) ([]byte, error) {
	h := t.hashStrategy()

	if _, err := h.Write(left); err != nil {
		return nil, err
	}
	if _, err := h.Write(right); err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}

// buildIntermediate constructs the intermediate and root levels of the tree
// for a given list of nodes. When a level holds an odd number of nodes the
// last node is paired with itself.
func (t *Tree[T]) buildIntermediate(nl []*Node[T], depth int) (*Node[T], error) {
	var nodes []*Node[T]

	for i := 0; i < len(nl); i += 2 {
		left, right := i, i+1
		dup := false
		if right == len(nl) {
			right = i
			dup = true
		}

		combined, err := t.combine(nl[left].Hash, nl[right].Hash)
		if err != nil {
			return nil, err
		}

		n := Node[T]{
			Left:  nl[left],
			Right: nl[right],
			Hash:  combined,
			dup:   dup,
			Tree:  t,
		}

		t.levels = append(t.levels, Level{
			Depth:    depth,
			Left:     nl[left].Hash,
			Right:    nl[right].Hash,
			Combined: combined,
		})

		nodes = append(nodes, &n)
		nl[left].Parent = &n
		if !dup {
			nl[right].Parent = &n
		}
	}

	if len(nodes) == 1 {
		return nodes[0], nil
	}

	return t.buildIntermediate(nodes, depth+1)
}

// =============================================================================

// Node represents a node, root, or leaf in the tree. It stores pointers to its
// immediate relationships, a hash, the data if it is a leaf, and other metadata.
type Node[T Hashable[T]] struct {
	Tree   *Tree[T]
	Parent *Node[T]
	Left   *Node[T]
	Right  *Node[T]
	Hash   []byte
	Value  T
	leaf   bool
	dup    bool
}

// verify walks down the tree until hitting a leaf, calculating the hash at
// each level and returning the resulting hash of the node.
func (n *Node[T]) verify() ([]byte, error) {
	if n.leaf {
		return n.Value.Hash()
	}

	leftBytes, err := n.Left.verify()
	if err != nil {
		return nil, err
	}

	rightBytes, err := n.Right.verify()
	if err != nil {
		return nil, err
	}

	return n.Tree.combine(leftBytes, rightBytes)
}

// CalculateHash is a helper function that calculates the hash of the node.
func (n *Node[T]) CalculateHash() ([]byte, error) {
	if n.leaf {
		return n.Value.Hash()
	}

	return n.Tree.combine(n.Left.Hash, n.Right.Hash)
}

// String returns a string representation of the node.
func (n *Node[T]) String() string {
	return fmt.Sprintf("%t %t %x %v", n.leaf, n.dup, n.Hash, n.Value)
}
