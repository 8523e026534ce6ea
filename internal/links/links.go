package links

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/NamanBalaji/ravenmagnet/internal/asset"
	"github.com/NamanBalaji/ravenmagnet/internal/errors"
	"github.com/NamanBalaji/ravenmagnet/internal/logger"
	"github.com/NamanBalaji/ravenmagnet/internal/repository"
	"github.com/NamanBalaji/ravenmagnet/pkg/magnet"
)

const defaultWorkers = 4

// IssueRequest describes a magnet link to publish under MAIN/SUB.
type IssueRequest struct {
	Main string
	Sub  string
	URI  string
	// Name becomes the unique asset tag. When empty the URI's dn is used.
	Name string
}

// Preview is what an IssueRequest would publish.
type Preview struct {
	Asset    asset.Name
	HashType string
	Hash     string
	Record   magnet.Record
}

// Recovered is a link rebuilt from the ledger.
type Recovered struct {
	Asset string
	URI   string
}

// Service publishes and recovers magnet links.
type Service struct {
	repo    repository.Repository
	workers int
	now     func() time.Time
}

// NewService returns a Service over repo. workers bounds concurrent
// rendering in Recover; values below 1 use the default.
func NewService(repo repository.Repository, workers int) *Service {
	if workers < 1 {
		workers = defaultWorkers
	}

	return &Service{
		repo:    repo,
		workers: workers,
		now:     time.Now,
	}
}

// Preview validates req and encodes its record without publishing it. It
// fails with repository.ErrAssetExists when the asset name is already taken.
func (s *Service) Preview(req IssueRequest) (Preview, error) {
	u, err := magnet.ParseURI(req.URI)
	if err != nil {
		return Preview{}, errors.NewInputError(err, "parse", req.URI)
	}

	rec, err := u.Record()
	if err != nil {
		return Preview{}, errors.NewInputError(err, "encode", u.Hash)
	}

	tag := req.Name
	if tag == "" {
		tag = u.Filename
	}

	name, err := asset.New(req.Main, req.Sub, tag)
	if err != nil {
		return Preview{}, errors.NewInputError(err, "asset", req.Main+asset.SubDelimiter+req.Sub)
	}

	if err := s.checkUnissued(name.String()); err != nil {
		return Preview{}, err
	}

	return Preview{
		Asset:    name,
		HashType: u.HashType,
		Hash:     u.Hash,
		Record:   rec,
	}, nil
}

func (s *Service) checkUnissued(assetName string) error {
	_, err := s.repo.Find(assetName)
	switch {
	case err == nil:
		return errors.NewStorageError(fmt.Errorf("%w: %s", repository.ErrAssetExists, assetName), "issue", assetName)
	case errors.Is(err, repository.ErrLinkNotFound):
		return nil
	default:
		return errors.NewStorageError(err, "issue", assetName)
	}
}

// Issue publishes req to the ledger.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (*repository.Link, error) {
	p, err := s.Preview(req)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	link := &repository.Link{
		ID:       uuid.New(),
		Asset:    p.Asset.String(),
		Record:   p.Record,
		IssuedAt: s.now().UTC(),
	}

	if err := s.repo.Save(link); err != nil {
		logger.Errorf("Failed to issue %s: %v", link.Asset, err)
		return nil, errors.NewStorageError(err, "issue", link.Asset)
	}

	logger.Infof("Issued %s (%s) as %s", link.Asset, p.HashType, link.ID)

	return link, nil
}

// Recover renders every link under parent back to a magnet URI, using the
// asset tag as the filename. Results keep ledger order.
func (s *Service) Recover(ctx context.Context, parent string) ([]Recovered, error) {
	if _, _, err := asset.ParseParent(parent); err != nil {
		return nil, errors.NewInputError(err, "recover", parent)
	}

	found, err := s.repo.FindByParent(parent)
	if err != nil {
		return nil, errors.NewStorageError(err, "recover", parent)
	}

	logger.Debugf("Recovering %d links under %s", len(found), parent)

	out := make([]Recovered, len(found))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, link := range found {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			uri, err := recoverLink(link)
			if err != nil {
				return errors.NewInputError(err, "recover", link.Asset)
			}

			out[i] = Recovered{Asset: link.Asset, URI: uri}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func recoverLink(link *repository.Link) (string, error) {
	hashType, hash, err := magnet.DecodeRecord(link.Record)
	if err != nil {
		return "", err
	}

	return magnet.RenderURI(hashType, hash, asset.TagOf(link.Asset)), nil
}

// DecodeAsset renders the record published under assetName as a magnet
// URI. The asset tag becomes the filename.
func DecodeAsset(assetName, recordHex string) (string, error) {
	uri, err := magnet.RecordToURI(recordHex, asset.TagOf(assetName))
	if err != nil {
		return "", errors.NewInputError(fmt.Errorf("asset %s: %w", assetName, err), "decode", recordHex)
	}

	return uri, nil
}
