// checkpoint creates CheckpointIO which provides various operations
// with sampler checkpoints.
package checkpoint

import (
	"encoding/json"
	"time"

	"github.com/op/go-logging"

	bolt "go.etcd.io/bbolt"

	"github.com/mcmcgo/twalk/mcmc"
)

// log is the global logging variable.
var log = logging.MustGetLogger("checkpoint")

// MAIN is key name for all parameters
var MAIN = []byte("main")

// CheckpointData stores checkpoint data.
type CheckpointData struct {
	Sampler *mcmc.State
	Seed    int64
	Iter    int
	Final   bool
	Time    time.Time
}

// CheckpointIO saves and loads checkpoints.
type CheckpointIO struct {
	db      *bolt.DB
	key     []byte
	seed    int64
	last    time.Time
	seconds float64
}

// NewCheckpointIO creates a new CheckpointIO.
func NewCheckpointIO(db *bolt.DB, key []byte, seed int64, seconds float64) (s *CheckpointIO) {
	s = &CheckpointIO{
		db:      db,
		key:     key,
		seed:    seed,
		seconds: seconds,
	}
	return
}

// Save saves a sampler state checkpoint to the database.
func (s *CheckpointIO) Save(state *mcmc.State, iter int, final bool) error {
	// Even if saving fails, we do not want to run this code too often.
	s.SetNow()
	data := &CheckpointData{
		Sampler: state,
		Seed:    s.seed,
		Iter:    iter,
		Final:   final,
		Time:    time.Now(),
	}
	dataB, err := json.Marshal(data)
	if err != nil {
		log.Error("Error serializing checkpoint", err)
		return err
	}
	err = SaveData(s.db, s.key, dataB)
	if err != nil {
		log.Error("Error saving checkpoint", err)
	}
	return err
}

// Load returns the stored checkpoint, nil if there is none.
func (s *CheckpointIO) Load() (*CheckpointData, error) {
	var data *CheckpointData

	b, err := LoadData(s.db, s.key)

	if err != nil || b == nil {
		return nil, err
	}

	err = json.Unmarshal(b, &data)

	if err != nil {
		return nil, err
	}

	if data == nil || data.Sampler == nil {
		return nil, nil
	}

	if data.Final {
		log.Noticef("Found finished sampling checkpoint (iter=%v)", data.Iter)
	} else {
		log.Noticef("Found unfinished sampling checkpoint (iter=%v)", data.Iter)
	}

	return data, nil
}

// Old returns true if last checkpoint save time too long ago.
func (s *CheckpointIO) Old() bool {
	if time.Since(s.last).Seconds() > s.seconds {
		return true
	}
	return false
}

// SetNow sets last checkpoint time to now.
func (s *CheckpointIO) SetNow() {
	s.last = time.Now()
}

// SaveData saves values in bolt database.
func SaveData(db *bolt.DB, key []byte, data []byte) error {
	if db == nil {
		return nil
	}
	err := db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(MAIN)
		if err != nil {
			return err
		}

		err = b.Put(key, data)
		return err
	})
	return err
}

// LoadData loads data from bolt database.
func LoadData(db *bolt.DB, key []byte) ([]byte, error) {
	var data []byte
	if db == nil {
		return nil, nil
	}
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(MAIN)
		if b == nil {
			return nil
		}

		v := b.Get(key)
		if v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
