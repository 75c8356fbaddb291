package rpc

import (
	"io"
	"net/http"

	"github.com/canopy-network/poh/lib"
)

// Client queries the status api of a node
type Client struct {
	rpcURL  string
	rpcPort string
	client  http.Client
}

// NewClient() creates a client of the api at rpcURL; a non-empty port marks a local deployment
func NewClient(rpcURL, rpcPort string) *Client {
	return &Client{rpcURL: rpcURL, rpcPort: rpcPort, client: http.Client{}}
}

func (c *Client) Version() (version *string, err lib.ErrorI) {
	version = new(string)
	err = c.get(VersionRouteName, "", version)
	return
}

func (c *Client) Height() (p *HeightResponse, err lib.ErrorI) {
	p = new(HeightResponse)
	err = c.get(HeightRouteName, "", p)
	return
}

func (c *Client) Finality() (p *FinalityResponse, err lib.ErrorI) {
	p = new(FinalityResponse)
	err = c.get(FinalityRouteName, "", p)
	return
}

func (c *Client) Account(key string) (p *AccountResponse, err lib.ErrorI) {
	p = new(AccountResponse)
	err = c.get(AccountRouteName, key, p)
	return
}

func (c *Client) ResourceUsage() (p *ResourceUsageResponse, err lib.ErrorI) {
	p = new(ResourceUsageResponse)
	err = c.get(ResourceUsageRouteName, "", p)
	return
}

func (c *Client) Config() (p *lib.Config, err lib.ErrorI) {
	p = new(lib.Config)
	err = c.get(ConfigRouteName, "", p)
	return
}

// url() builds the route's url, substituting the path parameter if the route has one
func (c *Client) url(routeName, param string) string {
	path := routePaths[routeName].Path
	if param != "" {
		path = path[:len(path)-len(":key")] + param
	}
	if c.rpcPort != "" {
		return c.rpcURL + colon + c.rpcPort + path
	}
	return c.rpcURL + path
}

func (c *Client) get(routeName, param string, ptr any) lib.ErrorI {
	resp, err := c.client.Get(c.url(routeName, param))
	if err != nil {
		return ErrGetRequest(err)
	}
	defer resp.Body.Close()
	return c.unmarshal(resp, ptr)
}

func (c *Client) unmarshal(resp *http.Response, ptr any) lib.ErrorI {
	bz, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrReadBody(err)
	}
	if resp.StatusCode != http.StatusOK {
		return ErrHttpStatus(resp.Status, resp.StatusCode, bz)
	}
	return lib.UnmarshalJSON(bz, ptr)
}
