package marriott

const searchQuery = `fragment PhoenixBookDTTAmountFragment on MonetaryAmount {
  amount currency decimalPoint __typename
}
query PhoenixBookDTTSearchProductsByProperty($search: ProductByPropertySearchInput!, $offset: Int, $limit: Int) {
  commerce {
    product {
      searchProductsByProperty(search: $search, offset: $offset, limit: $limit) {
        ... on ProductSearchByPropertyConnection {
          edges {
            node {
              ... on HotelRoom {
                id
                rates {
                  name
                  rateModes {
                    ... on HotelRoomRateModesCash {
                      averageNightlyRatePerUnit {
                        amount { ...PhoenixBookDTTAmountFragment __typename }
                        __typename
                      }
                      __typename
                    }
                    ... on HotelRoomRateModesPoints {
                      pointsPerUnit { points __typename }
                      __typename
                    }
                    __typename
                  }
                  __typename
                }
                basicInformation {
                  ratePlan { ratePlanCode marketCode __typename }
                  type name description isMembersOnly depositRequired
                  freeCancellationUntil sourceOfRate __typename
                }
                __typename
              }
              id __typename
            }
            __typename
          }
          total __typename
        }
        __typename
      }
      __typename
    }
    __typename
  }
}`
