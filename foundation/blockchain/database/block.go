package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"strconv"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
	"github.com/ardanlabs/powledger/foundation/blockchain/merkle"
)

// GenesisPrevHash is the previous block hash recorded in the genesis block.
const GenesisPrevHash = "0"

// Set of errors returned when a block fails validation.
var (
	ErrInvalidBlock   = errors.New("invalid block")
	ErrUnsolved       = errors.New("block hash does not meet the difficulty")
	ErrImmutableBlock = errors.New("block is sealed and can't be modified")
	ErrTxNotFound     = errors.New("transaction not found")
)

// ImmutableBlockError is returned for any attempt to change a sealed block.
type ImmutableBlockError struct {
	Number uint64
	Field  string
}

// Error implements the error interface.
func (ibe *ImmutableBlockError) Error() string {
	return fmt.Sprintf("block %d: field %q: %s", ibe.Number, ibe.Field, ErrImmutableBlock)
}

// Unwrap allows errors.Is to match ErrImmutableBlock.
func (ibe *ImmutableBlockError) Unwrap() error {
	return ErrImmutableBlock
}

// =============================================================================

// BlockHeader represents the fields of a block that are fixed once the
// block is sealed.
type BlockHeader struct {
	Number        uint64 `json:"index"`         // Position of the block in the chain.
	PrevBlockHash string `json:"previous_hash"` // Hash of the previous block in the chain.
	TimeStamp     uint64 `json:"timestamp"`     // Unix milliseconds the block was drafted.
	Nonce         uint64 `json:"nonce"`         // Value identified to solve the hash puzzle.
	TransRoot     string `json:"merkle_root"`   // Merkle root of the transactions in this block.
}

// Block represents a sealed group of transactions. All fields are
// unexported so a sealed block can't be changed once it exists.
type Block struct {
	header BlockHeader
	hash   string
	trans  *merkle.Tree[Tx]
}

// Genesis constructs the first block of a chain. The genesis block is never
// mined, its hash is calculated once at nonce zero.
func Genesis(timeStamp uint64, trans []Tx) (Block, error) {
	draft, err := NewDraft(0, GenesisPrevHash, timeStamp, trans)
	if err != nil {
		return Block{}, err
	}

	return draft.block(), nil
}

// Header returns a copy of the block header.
func (b Block) Header() BlockHeader {
	return b.header
}

// Number returns the position of the block in the chain.
func (b Block) Number() uint64 {
	return b.header.Number
}

// PrevBlockHash returns the hash of the previous block.
func (b Block) PrevBlockHash() string {
	return b.header.PrevBlockHash
}

// TimeStamp returns the time the block was drafted in Unix milliseconds.
func (b Block) TimeStamp() uint64 {
	return b.header.TimeStamp
}

// Nonce returns the nonce that solved the block.
func (b Block) Nonce() uint64 {
	return b.header.Nonce
}

// MerkleRoot returns the merkle root recorded in the header.
func (b Block) MerkleRoot() string {
	return b.header.TransRoot
}

// Hash returns the stored hash of the block.
func (b Block) Hash() string {
	return b.hash
}

// Transactions returns a copy of the transactions in the block.
func (b Block) Transactions() []Tx {
	if b.trans == nil {
		return nil
	}

	return b.trans.Values()
}

// TxProof is the merkle inclusion proof of a transaction in a block. Folding
// the transaction hash with the proof hashes, in the given order, produces
// the block's merkle root.
type TxProof struct {
	BlockNumber uint64   `json:"index"`
	Tx          Tx       `json:"tx"`
	TxHash      string   `json:"tx_hash"`
	MerkleRoot  string   `json:"merkle_root"`
	Proof       []string `json:"proof"`
	Order       []int64  `json:"order"`
}

// Verify checks the proof folds into the merkle root.
func (p TxProof) Verify() (bool, error) {
	return merkle.VerifyProof(p.TxHash, p.Proof, p.Order, p.MerkleRoot)
}

// ProveTx returns the merkle inclusion proof for the transaction with the
// specified hash.
func (b Block) ProveTx(txHash string) (TxProof, error) {
	for _, tx := range b.Transactions() {
		if tx.HashHex() != txHash {
			continue
		}

		proof, order, err := b.trans.ProofHex(tx)
		if err != nil {
			return TxProof{}, err
		}

		p := TxProof{
			BlockNumber: b.header.Number,
			Tx:          tx,
			TxHash:      txHash,
			MerkleRoot:  b.header.TransRoot,
			Proof:       proof,
			Order:       order,
		}

		return p, nil
	}

	return TxProof{}, fmt.Errorf("block %d: tx %s: %w", b.header.Number, txHash, ErrTxNotFound)
}

// Amend always fails. It exists so callers attempting to change a sealed
// block get a typed error back instead of a silent success.
func (b Block) Amend(field string) error {
	return &ImmutableBlockError{Number: b.header.Number, Field: field}
}

// Recompute calculates the hash of the block from its own fields.
func (b Block) Recompute() (string, error) {
	pre, err := newPreimage(b.header, b.Transactions())
	if err != nil {
		return "", err
	}

	sum := pre.sum(digest.New(), b.header.Nonce, nil)
	return sum.Hex(), nil
}

// CalculateMerkleRoot rebuilds the merkle root from the transactions.
func (b Block) CalculateMerkleRoot() (string, error) {
	tree, err := merkle.NewTree(b.Transactions())
	if err != nil {
		return "", err
	}

	return tree.RootHex(), nil
}

// VerifyHash checks the stored hash and merkle root still match the block's
// own fields.
func (b Block) VerifyHash() error {
	hash, err := b.Recompute()
	if err != nil {
		return err
	}

	if hash != b.hash {
		return fmt.Errorf("%w: block hash doesn't match its fields, got %s, exp %s", ErrInvalidBlock, b.hash, hash)
	}

	root, err := b.CalculateMerkleRoot()
	if err != nil {
		return err
	}

	if root != b.header.TransRoot {
		return fmt.Errorf("%w: merkle root does not match transactions, got %s, exp %s", ErrInvalidBlock, b.header.TransRoot, root)
	}

	return nil
}

// ValidateBlock checks the block's integrity on its own and against the
// block that precedes it in the chain.
func (b Block) ValidateBlock(previousBlock Block, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateBlock: validate: blk[%d]: check: block number is the next number", b.header.Number)

	nextNumber := previousBlock.header.Number + 1
	if b.header.Number != nextNumber {
		return fmt.Errorf("%w: this block is not the next number, got %d, exp %d", ErrInvalidBlock, b.header.Number, nextNumber)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block hash and merkle root recompute", b.header.Number)

	if err := b.VerifyHash(); err != nil {
		return err
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: parent hash does match parent block", b.header.Number)

	if b.header.PrevBlockHash != previousBlock.hash {
		return fmt.Errorf("%w: parent block hash doesn't match our known parent, got %s, exp %s", ErrInvalidBlock, b.header.PrevBlockHash, previousBlock.hash)
	}

	return nil
}

// =============================================================================

// DraftBlock represents a block that is being mined. Everything but the
// nonce and the hash is fixed at construction.
type DraftBlock struct {
	header  BlockHeader
	sum     digest.Digest
	trans   *merkle.Tree[Tx]
	pre     preimage
	hasher  hash.Hash
	scratch []byte
}

// NewDraft constructs a draft block, calculating the merkle root once and
// the hash at nonce zero.
func NewDraft(number uint64, prevBlockHash string, timeStamp uint64, trans []Tx) (*DraftBlock, error) {
	tree, err := merkle.NewTree(trans)
	if err != nil {
		return nil, err
	}

	header := BlockHeader{
		Number:        number,
		PrevBlockHash: prevBlockHash,
		TimeStamp:     timeStamp,
		Nonce:         0,
		TransRoot:     tree.RootHex(),
	}

	pre, err := newPreimage(header, tree.Values())
	if err != nil {
		return nil, err
	}

	d := DraftBlock{
		header:  header,
		trans:   tree,
		pre:     pre,
		hasher:  digest.New(),
		scratch: make([]byte, 0, 20),
	}
	d.SetNonce(0)

	return &d, nil
}

// SetNonce changes the nonce and recalculates the hash.
func (d *DraftBlock) SetNonce(nonce uint64) {
	d.header.Nonce = nonce
	d.sum = d.pre.sum(d.hasher, nonce, d.scratch)
}

// Nonce returns the current nonce.
func (d *DraftBlock) Nonce() uint64 {
	return d.header.Nonce
}

// Hash returns the hash for the current nonce.
func (d *DraftBlock) Hash() string {
	return d.sum.Hex()
}

// Header returns a copy of the draft header.
func (d *DraftBlock) Header() BlockHeader {
	return d.header
}

// Transactions returns a copy of the transactions in the draft.
func (d *DraftBlock) Transactions() []Tx {
	return d.trans.Values()
}

// Solved reports whether the current hash meets the difficulty.
func (d *DraftBlock) Solved(difficulty uint) bool {
	return isHashSolved(difficulty, d.sum)
}

// Seal converts the draft into an immutable block. The current hash must
// meet the difficulty.
func (d *DraftBlock) Seal(difficulty uint) (Block, error) {
	if !d.Solved(difficulty) {
		return Block{}, fmt.Errorf("%w: difficulty %d: hash %s", ErrUnsolved, difficulty, d.Hash())
	}

	return d.block(), nil
}

// block produces the sealed value from the draft's current state.
func (d *DraftBlock) block() Block {
	return Block{
		header: d.header,
		hash:   d.sum.Hex(),
		trans:  d.trans,
	}
}

// =============================================================================

// preimage holds the serialized block with a gap where the nonce goes. The
// serialized form is the JSON object
//
//	{"index":…,"previous_hash":…,"timestamp":…,"transactions":[…],"nonce":…,"merkle_root":…}
//
// with the keys in exactly that order.
type preimage struct {
	prefix []byte
	suffix []byte
}

// newPreimage encodes every field of the block except the nonce.
func newPreimage(header BlockHeader, trans []Tx) (preimage, error) {
	if trans == nil {
		trans = []Tx{}
	}

	fixed := struct {
		Index        uint64 `json:"index"`
		PreviousHash string `json:"previous_hash"`
		TimeStamp    uint64 `json:"timestamp"`
		Transactions []Tx   `json:"transactions"`
	}{
		Index:        header.Number,
		PreviousHash: header.PrevBlockHash,
		TimeStamp:    header.TimeStamp,
		Transactions: trans,
	}

	data, err := json.Marshal(fixed)
	if err != nil {
		return preimage{}, err
	}

	root, err := json.Marshal(header.TransRoot)
	if err != nil {
		return preimage{}, err
	}

	prefix := append(data[:len(data)-1:len(data)-1], `,"nonce":`...)
	suffix := append(append([]byte(`,"merkle_root":`), root...), '}')

	return preimage{prefix: prefix, suffix: suffix}, nil
}

// bytes returns the full serialized block for the nonce.
func (p preimage) bytes(nonce uint64) []byte {
	b := make([]byte, 0, len(p.prefix)+len(p.suffix)+20)
	b = append(b, p.prefix...)
	b = strconv.AppendUint(b, nonce, 10)
	return append(b, p.suffix...)
}

// sum hashes the serialized block for the nonce. The scratch buffer is used
// to format the nonce without allocating.
func (p preimage) sum(h hash.Hash, nonce uint64, scratch []byte) digest.Digest {
	h.Reset()
	h.Write(p.prefix)
	h.Write(strconv.AppendUint(scratch[:0], nonce, 10))
	h.Write(p.suffix)

	var d digest.Digest
	h.Sum(d[:0])
	return d
}

// =============================================================================

// BlockData represents what is stored for a block and what is sent to
// clients.
type BlockData struct {
	Hash   string      `json:"hash"`
	Header BlockHeader `json:"block"`
	Trans  []Tx        `json:"trans"`
}

// NewBlockData constructs the value to store or serialize.
func NewBlockData(block Block) BlockData {
	trans := block.Transactions()
	if trans == nil {
		trans = []Tx{}
	}

	return BlockData{
		Hash:   block.hash,
		Header: block.header,
		Trans:  trans,
	}
}

// ToBlock converts a BlockData into a Block. The record is taken as is, it
// is not validated.
func ToBlock(blockData BlockData) (Block, error) {
	tree, err := merkle.NewTree(blockData.Trans)
	if err != nil {
		return Block{}, err
	}

	block := Block{
		header: blockData.Header,
		hash:   blockData.Hash,
		trans:  tree,
	}

	return block, nil
}
