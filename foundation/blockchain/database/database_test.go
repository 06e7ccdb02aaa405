package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/database/storage/memory"
)

func Test_Database(t *testing.T) {
	t.Log("Given the need to append blocks to storage.")
	{
		storage := memory.New()

		db, err := database.New(storage, noop)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open the database: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to open the database.", success)

		genesis, err := database.Genesis(1, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the genesis block: %v", failed, err)
		}

		if err := db.Write(genesis); err != nil {
			t.Fatalf("\t%s\tShould be able to write the genesis block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to write the genesis block.", success)

		draft, err := database.NewDraft(1, genesis.Hash(), 2, trans(t))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct a draft: %v", failed, err)
		}

		block, _, err := database.POW(context.Background(), draft, 1, "alice", noop)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine the block: %v", failed, err)
		}

		if err := db.Write(genesis); err == nil {
			t.Fatalf("\t%s\tShould not write a block out of order.", failed)
		}
		t.Logf("\t%s\tShould not write a block out of order.", success)

		if err := db.Write(block); err != nil {
			t.Fatalf("\t%s\tShould be able to write the mined block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to write the mined block.", success)

		if db.Count() != 2 || db.LatestBlock().Hash() != block.Hash() {
			t.Fatalf("\t%s\tShould track the latest block.", failed)
		}
		t.Logf("\t%s\tShould track the latest block.", success)

		got, err := db.GetBlock(1)
		if err != nil || got.Hash() != block.Hash() || len(got.Transactions()) != 2 {
			t.Fatalf("\t%s\tShould be able to read the block back: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to read the block back.", success)

		if _, err := db.GetBlock(2); !errors.Is(err, database.ErrBlockNotFound) {
			t.Fatalf("\t%s\tShould report a missing block: %v", failed, err)
		}
		t.Logf("\t%s\tShould report a missing block.", success)

		if blocks := db.Blocks(); len(blocks) != 2 || blocks[1].Hash() != block.Hash() {
			t.Fatalf("\t%s\tShould hold every block in memory: %d", failed, len(blocks))
		}
		t.Logf("\t%s\tShould hold every block in memory.", success)

		blocks, err := db.ReadBlocks()
		if err != nil || len(blocks) != 2 {
			t.Fatalf("\t%s\tShould read every block back from storage: %v", failed, err)
		}
		t.Logf("\t%s\tShould read every block back from storage.", success)

		reopened, err := database.New(storage, noop)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to reopen the database: %v", failed, err)
		}

		if reopened.Count() != 2 || reopened.LatestBlock().Hash() != block.Hash() {
			t.Fatalf("\t%s\tShould load the stored blocks.", failed)
		}
		t.Logf("\t%s\tShould load the stored blocks.", success)

		if err := db.Reset(); err != nil || db.Count() != 0 || len(db.Blocks()) != 0 {
			t.Fatalf("\t%s\tShould be able to reset the database: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to reset the database.", success)
	}
}

func Test_ReadBlocksError(t *testing.T) {
	t.Log("Given the need to surface storage failures while reading the chain.")
	{
		storage := &brokenStorage{Memory: memory.New()}

		genesis, err := database.Genesis(1, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the genesis block: %v", failed, err)
		}

		if err := storage.Write(database.NewBlockData(genesis)); err != nil {
			t.Fatalf("\t%s\tShould be able to write the genesis block: %v", failed, err)
		}

		db, err := database.New(storage, noop)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open the database: %v", failed, err)
		}

		storage.broken = true

		if _, err := db.ReadBlocks(); !errors.Is(err, errDiskRead) {
			t.Fatalf("\t%s\tShould return the storage error instead of a short chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould return the storage error instead of a short chain.", success)

		if _, err := database.New(storage, noop); !errors.Is(err, errDiskRead) {
			t.Fatalf("\t%s\tShould fail to open over broken storage: %v", failed, err)
		}
		t.Logf("\t%s\tShould fail to open over broken storage.", success)

		if db.Count() != 1 || db.LatestBlock().Hash() != genesis.Hash() {
			t.Fatalf("\t%s\tShould keep serving the blocks already loaded.", failed)
		}
		t.Logf("\t%s\tShould keep serving the blocks already loaded.", success)
	}
}

// =============================================================================

var errDiskRead = errors.New("disk read failed")

// brokenStorage fails every read once broken is set.
type brokenStorage struct {
	*memory.Memory
	broken bool
}

func (bs *brokenStorage) GetBlock(num uint64) (database.BlockData, error) {
	if bs.broken {
		return database.BlockData{}, errDiskRead
	}

	return bs.Memory.GetBlock(num)
}

func (bs *brokenStorage) ForEach() database.Iterator {
	return &brokenIterator{storage: bs}
}

type brokenIterator struct {
	storage *brokenStorage
	current uint64
	eoc     bool
}

func (bi *brokenIterator) Next() (database.BlockData, error) {
	blockData, err := bi.storage.GetBlock(bi.current)
	if err != nil {
		bi.eoc = true
	}

	bi.current++

	return blockData, err
}

func (bi *brokenIterator) Done() bool {
	return bi.eoc
}
